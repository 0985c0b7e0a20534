package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Meal struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId             uuid.UUID  `gorm:"type:uuid;not null;index:idx_meals_user_date,priority:1"`
	MealType           string     `gorm:"type:varchar(20);not null"`
	MealDate           time.Time  `gorm:"not null;index:idx_meals_user_date,priority:2"`
	Status             string     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus      string     `gorm:"type:varchar(20);not null;default:'unpaid'"`
	DietaryPreferences *string    `gorm:"type:varchar(200)"`
	SubscriptionId     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`

	User         User          `gorm:"foreignKey:UserId"`
	Subscription *Subscription `gorm:"foreignKey:SubscriptionId"`
}

func (Meal) TableName() string {
	return "meals"
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	ensureId(&m.Id)
	return nil
}
