// Package paymenttest provides an in-memory payment.Gateway for tests.
package paymenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/pkg/payment"
)

// Gateway records every outbound call and fails on demand.
type Gateway struct {
	mu sync.Mutex

	CheckoutErr error
	RefundErr   error

	Checkouts []payment.CheckoutRequest
	Refunds   []payment.RefundRequest
}

func NewGateway() *Gateway {
	return &Gateway{}
}

func (g *Gateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.CheckoutErr != nil {
		return nil, g.CheckoutErr
	}
	g.Checkouts = append(g.Checkouts, req)
	return &payment.CheckoutSession{
		Reference:   req.OrderId,
		Token:       "tok-" + req.OrderId,
		RedirectURL: "https://pay.test/checkout/" + req.OrderId,
	}, nil
}

func (g *Gateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.RefundErr != nil {
		return nil, g.RefundErr
	}
	g.Refunds = append(g.Refunds, req)
	return &payment.RefundResult{RefundRef: fmt.Sprintf("rf-%s-%d", req.Reference, len(g.Refunds))}, nil
}

type wireNotification struct {
	ID              string            `json:"id"`
	Type            payment.EventType `json:"type"`
	Reference       string            `json:"reference"`
	SubscriptionRef string            `json:"subscription_ref"`
	Signature       string            `json:"signature"`
}

// ValidSignature is the only signature ParseNotification accepts.
const ValidSignature = "valid"

func (g *Gateway) ParseNotification(payload []byte) (*payment.Notification, error) {
	var n wireNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidPayload, err)
	}
	if n.Signature != ValidSignature {
		return nil, apperror.ErrInvalidSignature
	}
	if n.Type == "" {
		n.Type = payment.EventUnknown
	}
	return &payment.Notification{
		ID:              n.ID,
		Type:            n.Type,
		Reference:       n.Reference,
		SubscriptionRef: n.SubscriptionRef,
		RawStatus:       string(n.Type),
		Payload:         payload,
	}, nil
}

func (g *Gateway) RefundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Refunds)
}

func (g *Gateway) CheckoutCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Checkouts)
}

// Notify builds a signed notification body understood by ParseNotification.
func Notify(id string, eventType payment.EventType, reference string) []byte {
	return mustJSON(wireNotification{ID: id, Type: eventType, Reference: reference, Signature: ValidSignature})
}

func NotifySubscription(id string, eventType payment.EventType, subscriptionRef string) []byte {
	return mustJSON(wireNotification{ID: id, Type: eventType, SubscriptionRef: subscriptionRef, Signature: ValidSignature})
}

func mustJSON(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
