// Package reconcile keeps local payment, meal and subscription records in step
// with the payment processor. Every operation tolerates duplicated or reordered
// notifications.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/pkg/events"
	"meal-ordering-be/pkg/payment"

	"github.com/google/uuid"
)

const (
	logModule     = "RECONCILER"
	webhookModule = "WEBHOOK"
)

type Reconciler struct {
	gateway     payment.Gateway
	locker      locker.Locker
	publisher   events.Publisher
	logger      logger.ILogger
	now         func() time.Time
	lockTimeout time.Duration
}

type Option func(*Reconciler)

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func WithLockTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.lockTimeout = d }
}

func NewReconciler(gateway payment.Gateway, l locker.Locker, publisher events.Publisher, log logger.ILogger, opts ...Option) *Reconciler {
	r := &Reconciler{
		gateway:     gateway,
		locker:      l,
		publisher:   publisher,
		logger:      log,
		now:         time.Now,
		lockTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) lock(ctx context.Context, key string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()

	release, err := r.locker.Lock(lockCtx, key)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	return release, nil
}

// effects collects what must happen once a transaction has committed.
type effects struct {
	events   []events.Event
	refundOf *entity.Payment
}

func (f *effects) emit(eventType string, data map[string]interface{}) {
	f.events = append(f.events, events.New(eventType, data))
}

func (r *Reconciler) publish(ctx context.Context, evts []events.Event) {
	if r.publisher == nil {
		return
	}
	for _, evt := range evts {
		if err := r.publisher.Publish(ctx, evt); err != nil {
			r.logger.Warn(logModule, "Failed to publish event", map[string]interface{}{
				"eventType": evt.EventType(),
				"error":     err.Error(),
			})
		}
	}
}

func paymentEventData(p *entity.Payment) map[string]interface{} {
	data := map[string]interface{}{
		"payment_id":   p.Id.String(),
		"user_id":      p.UserId.String(),
		"amount":       p.Amount.StringFixed(2),
		"payment_type": string(p.PaymentType),
		"reference":    p.ProcessorPaymentRef,
	}
	if p.MealId != nil {
		data["meal_id"] = p.MealId.String()
	}
	if p.SubscriptionId != nil {
		data["subscription_id"] = p.SubscriptionId.String()
	}
	return data
}

func ownerOf(userId uuid.UUID) entity.Principal {
	return entity.Principal{UserId: userId, Role: entity.UserRoleStudent}
}
