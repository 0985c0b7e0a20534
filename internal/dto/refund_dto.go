package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- User-Side Refund Request ---

type UserRefundRequest struct {
	PaymentId uuid.UUID `json:"payment_id" validate:"required"`
	Reason    string    `json:"reason" validate:"required,min=10"`
}

type UserRefundResponse struct {
	RefundId string `json:"refund_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// --- Admin-Side Refund Management ---

type AdminRefundListResponse struct {
	Id          uuid.UUID              `json:"id"`
	PaymentId   uuid.UUID              `json:"payment_id"`
	User        AdminRefundUserInfo    `json:"user"`
	Payment     AdminRefundPaymentInfo `json:"payment"`
	Reason      string                 `json:"reason"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	ProcessedBy *uuid.UUID             `json:"processed_by,omitempty"`
}

type AdminRefundUserInfo struct {
	Id       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

type AdminRefundPaymentInfo struct {
	Id          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType string          `json:"payment_type"`
	Status      string          `json:"status"`
	PaidAt      time.Time       `json:"paid_at"`
}

type AdminRefundDecisionResponse struct {
	RefundId      string    `json:"refund_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	ProcessedAt   time.Time `json:"processed_at"`
}
