package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// EventType is the processor-neutral kind of an inbound notification.
type EventType string

const (
	EventCheckoutCompleted     EventType = "checkout.completed"
	EventCheckoutFailed        EventType = "checkout.failed"
	EventCheckoutPending       EventType = "checkout.pending"
	EventSubscriptionCancelled EventType = "subscription.cancelled"
	EventUnknown               EventType = "unknown"
)

type Customer struct {
	Name  string
	Email string
}

// CheckoutRequest describes one hosted checkout. OrderId becomes the processor reference.
type CheckoutRequest struct {
	OrderId     string
	Amount      decimal.Decimal
	ItemId      string
	Description string
	Customer    Customer
}

type CheckoutSession struct {
	Reference   string
	Token       string
	RedirectURL string
}

type RefundRequest struct {
	Reference      string
	Amount         decimal.Decimal
	IdempotencyKey string
	Reason         string
}

type RefundResult struct {
	RefundRef string
}

// Notification is a verified inbound event.
type Notification struct {
	ID              string
	Type            EventType
	Reference       string
	SubscriptionRef string
	RawStatus       string
	Payload         []byte
}

// Gateway is the outbound and inbound boundary with the payment processor.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	// ParseNotification verifies the signature and classifies the event.
	ParseNotification(payload []byte) (*Notification, error)
}
