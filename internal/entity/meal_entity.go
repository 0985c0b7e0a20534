package entity

import (
	"time"

	"github.com/google/uuid"
)

type MealCategory string
type MealStatus string
type MealPaymentStatus string

const (
	MealCategoryBreakfast MealCategory = "breakfast"
	MealCategoryLunch     MealCategory = "lunch"
	MealCategoryDinner    MealCategory = "dinner"

	MealStatusPending   MealStatus = "pending"
	MealStatusConfirmed MealStatus = "confirmed"
	MealStatusCancelled MealStatus = "cancelled"

	MealPaymentUnpaid   MealPaymentStatus = "unpaid"
	MealPaymentPaid     MealPaymentStatus = "paid"
	MealPaymentRefunded MealPaymentStatus = "refunded"
)

func (c MealCategory) Valid() bool {
	switch c {
	case MealCategoryBreakfast, MealCategoryLunch, MealCategoryDinner:
		return true
	}
	return false
}

type Meal struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	MealType           MealCategory
	MealDate           time.Time
	Status             MealStatus
	PaymentStatus      MealPaymentStatus
	DietaryPreferences *string
	SubscriptionId     *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (m *Meal) IsStandalone() bool {
	return m.SubscriptionId == nil
}

// MealFilter narrows a user's meal history.
type MealFilter struct {
	Status   MealStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
