package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MealOnDay matches meals scheduled within the calendar day containing Day.
type MealOnDay struct {
	Day time.Time
}

func (s MealOnDay) Apply(db *gorm.DB) *gorm.DB {
	start := time.Date(s.Day.Year(), s.Day.Month(), s.Day.Day(), 0, 0, 0, 0, s.Day.Location())
	return db.Where("meal_date >= ? AND meal_date < ?", start, start.AddDate(0, 0, 1))
}

type MealOfType struct {
	MealType string
}

func (s MealOfType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("meal_type = ?", s.MealType)
}

type MealNotCancelled struct{}

func (s MealNotCancelled) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", "cancelled")
}

// MealDateBetween is inclusive of From and exclusive of To. Zero bounds are open.
type MealDateBetween struct {
	From time.Time
	To   time.Time
}

func (s MealDateBetween) Apply(db *gorm.DB) *gorm.DB {
	if !s.From.IsZero() {
		db = db.Where("meal_date >= ?", s.From)
	}
	if !s.To.IsZero() {
		db = db.Where("meal_date < ?", s.To)
	}
	return db
}

type MealsOfSubscription struct {
	SubscriptionID uuid.UUID
}

func (s MealsOfSubscription) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id = ?", s.SubscriptionID)
}

type StandaloneMeals struct{}

func (s StandaloneMeals) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id IS NULL")
}
