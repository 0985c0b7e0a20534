package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MealPlan is a purchasable template. Only IsActive may change once a
// subscription references the plan.
type MealPlan struct {
	Id            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	DurationDays  int
	MealsIncluded int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
