package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByProcessorPaymentRef struct {
	Ref string
}

func (s ByProcessorPaymentRef) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("processor_payment_ref = ?", s.Ref)
}

type PaymentForMeal struct {
	MealID uuid.UUID
}

func (s PaymentForMeal) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("meal_id = ?", s.MealID)
}

type PaymentForSubscription struct {
	SubscriptionID uuid.UUID
}

func (s PaymentForSubscription) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id = ?", s.SubscriptionID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type ByPaymentID struct {
	PaymentID uuid.UUID
}

func (s ByPaymentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payment_id = ?", s.PaymentID)
}
