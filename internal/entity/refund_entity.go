package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatus represents the status of a refund request
type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "pending"
	RefundStatusApproved RefundStatus = "approved"
	RefundStatusRejected RefundStatus = "rejected"
)

type RefundDecision string

const (
	RefundDecisionApprove RefundDecision = "approve"
	RefundDecisionReject  RefundDecision = "reject"
)

type RefundRequest struct {
	Id          uuid.UUID
	PaymentId   uuid.UUID
	UserId      uuid.UUID
	Reason      string
	Status      RefundStatus
	ProcessedAt *time.Time
	ProcessedBy *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated by FindAllWithDetails
	Payment *Payment
	User    *User
}

func (r *RefundRequest) IsResolved() bool {
	return r.Status != RefundStatusPending
}
