package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Catalog DTOs ---

type PlanResponse struct {
	Id            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	DurationDays  int             `json:"duration_days"`
	MealsIncluded int             `json:"meals_included"`
	IsActive      bool            `json:"is_active"`
}

// --- Payment DTOs ---

type SubscriptionCheckoutRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

type CheckoutResponse struct {
	PaymentId   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Token       string          `json:"token,omitempty"`
	RedirectUrl string          `json:"redirect_url"`
	Reused      bool            `json:"reused"`
}

type PaymentResponse struct {
	Id          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType string          `json:"payment_type"`
	Status      string          `json:"status"`
	MealId      *uuid.UUID      `json:"meal_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MidtransWebhookRequest is the notification body posted by the processor.
type MidtransWebhookRequest struct {
	TransactionId     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	SubscriptionId    string `json:"subscription_id"`
	// Signature validation fields
	SignatureKey string `json:"signature_key"`
	StatusCode   string `json:"status_code"`
	GrossAmount  string `json:"gross_amount"`
}
