package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string
type PaymentStatus string

const (
	PaymentTypeOneTime      PaymentType = "one-time"
	PaymentTypeSubscription PaymentType = "subscription"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is one money movement. Amount never changes after creation.
type Payment struct {
	Id                  uuid.UUID
	UserId              uuid.UUID
	Amount              decimal.Decimal
	PaymentType         PaymentType
	Status              PaymentStatus
	ProcessorPaymentRef string
	ProcessorRefundRef  *string
	CheckoutURL         string
	SubscriptionId      *uuid.UUID
	MealId              *uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RevenueSummary aggregates completed payments.
type RevenueSummary struct {
	Total        decimal.Decimal
	Subscription decimal.Decimal
	OneTime      decimal.Decimal
}
