package reconcile

import (
	"context"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/events"
	"meal-ordering-be/pkg/payment"

	"github.com/google/uuid"
)

type NotificationResult struct {
	EventId   string
	Type      payment.EventType
	Duplicate bool
	Ignored   bool
}

// HandleNotification verifies and applies one processor notification. Replays of an
// already applied notification are acknowledged without touching any record.
func (r *Reconciler) HandleNotification(ctx context.Context, uow unitofwork.UnitOfWork, payload []byte) (*NotificationResult, error) {
	n, err := r.gateway.ParseNotification(payload)
	if err != nil {
		r.logger.Warn(webhookModule, "Rejected notification", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	if n.ID == "" {
		n.ID = string(n.Type) + ":" + n.Reference + n.SubscriptionRef
	}
	result := &NotificationResult{EventId: n.ID, Type: n.Type}

	seen, err := uow.WebhookEventRepository().Exists(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	if seen {
		result.Duplicate = true
		r.logger.Info(webhookModule, "Duplicate notification skipped", map[string]interface{}{
			"eventId": n.ID,
		})
		return result, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	var fx *effects
	switch n.Type {
	case payment.EventCheckoutCompleted:
		fx, err = r.applyCheckoutCompleted(ctx, uow, n.Reference)
	case payment.EventCheckoutFailed:
		fx, err = r.applyCheckoutFailed(ctx, uow, n.Reference)
	case payment.EventSubscriptionCancelled:
		fx, err = r.applySubscriptionCancelled(ctx, uow, n.SubscriptionRef)
	default:
		result.Ignored = true
	}
	if err != nil {
		return nil, err
	}

	reference := n.Reference
	if reference == "" {
		reference = n.SubscriptionRef
	}
	if err := uow.WebhookEventRepository().MarkProcessed(ctx, &entity.WebhookEvent{
		EventId:     n.ID,
		EventType:   string(n.Type),
		Reference:   reference,
		Payload:     n.Payload,
		ProcessedAt: r.now(),
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info(webhookModule, "Notification processed", map[string]interface{}{
		"eventId":   n.ID,
		"type":      string(n.Type),
		"rawStatus": n.RawStatus,
		"reference": reference,
		"ignored":   result.Ignored,
	})
	r.afterCommit(ctx, uow, fx)

	return result, nil
}

// OnCheckoutCompleted marks the payment behind ref completed and settles its meal.
func (r *Reconciler) OnCheckoutCompleted(ctx context.Context, uow unitofwork.UnitOfWork, ref string) error {
	return r.inTx(ctx, uow, func() (*effects, error) {
		return r.applyCheckoutCompleted(ctx, uow, ref)
	})
}

// OnCheckoutFailed marks a still pending payment failed.
func (r *Reconciler) OnCheckoutFailed(ctx context.Context, uow unitofwork.UnitOfWork, ref string) error {
	return r.inTx(ctx, uow, func() (*effects, error) {
		return r.applyCheckoutFailed(ctx, uow, ref)
	})
}

// OnSubscriptionCancelled cancels the subscription known to the processor as ref.
// Meals already expanded from it are left untouched.
func (r *Reconciler) OnSubscriptionCancelled(ctx context.Context, uow unitofwork.UnitOfWork, ref string) error {
	return r.inTx(ctx, uow, func() (*effects, error) {
		return r.applySubscriptionCancelled(ctx, uow, ref)
	})
}

func (r *Reconciler) inTx(ctx context.Context, uow unitofwork.UnitOfWork, apply func() (*effects, error)) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	fx, err := apply()
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}
	r.afterCommit(ctx, uow, fx)
	return nil
}

func (r *Reconciler) afterCommit(ctx context.Context, uow unitofwork.UnitOfWork, fx *effects) {
	if fx == nil {
		return
	}
	r.publish(ctx, fx.events)

	if fx.refundOf == nil {
		return
	}
	p := fx.refundOf
	if _, err := r.RequestRefund(ctx, uow, p.Id, "Payment settled after the meal was cancelled"); err != nil {
		r.logger.Warn(logModule, "Refund of late settlement failed", map[string]interface{}{
			"paymentId": p.Id.String(),
			"error":     err.Error(),
		})
		if _, err := r.OpenRefundRequest(ctx, uow, ownerOf(p.UserId), p.Id,
			"Automatic refund failed for a payment settled after cancellation: "+err.Error()); err != nil {
			r.logger.Error(logModule, "Failed to queue refund for review", map[string]interface{}{
				"paymentId": p.Id.String(),
				"error":     err.Error(),
			})
		}
	}
}

func (r *Reconciler) applyCheckoutCompleted(ctx context.Context, uow unitofwork.UnitOfWork, ref string) (*effects, error) {
	fx := &effects{}

	p, err := uow.PaymentRepository().FindOne(ctx, specification.ByProcessorPaymentRef{Ref: ref}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if p == nil {
		r.logger.Warn(logModule, "Completion for unknown payment ignored", map[string]interface{}{
			"reference": ref,
		})
		return fx, nil
	}
	if p.Status == entity.PaymentStatusCompleted || p.Status == entity.PaymentStatusRefunded {
		return fx, nil
	}

	previous := p.Status
	p.Status = entity.PaymentStatusCompleted
	if err := uow.PaymentRepository().Update(ctx, p); err != nil {
		return nil, err
	}
	fx.emit(events.PaymentCompleted, paymentEventData(p))

	r.logger.Info(logModule, "Payment completed", map[string]interface{}{
		"paymentId": p.Id.String(),
		"reference": ref,
		"previous":  string(previous),
	})

	if p.MealId == nil {
		return fx, nil
	}

	meal, err := uow.MealRepository().FindOne(ctx, specification.ByID{ID: *p.MealId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return fx, nil
	}

	switch {
	case meal.Status == entity.MealStatusCancelled:
		fx.refundOf = p
	case meal.Status != entity.MealStatusConfirmed || meal.PaymentStatus != entity.MealPaymentPaid:
		meal.Status = entity.MealStatusConfirmed
		meal.PaymentStatus = entity.MealPaymentPaid
		if err := uow.MealRepository().Update(ctx, meal); err != nil {
			return nil, err
		}
		fx.emit(events.MealConfirmed, mealEventData(meal))
	}
	return fx, nil
}

func (r *Reconciler) applyCheckoutFailed(ctx context.Context, uow unitofwork.UnitOfWork, ref string) (*effects, error) {
	fx := &effects{}

	p, err := uow.PaymentRepository().FindOne(ctx, specification.ByProcessorPaymentRef{Ref: ref}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if p == nil {
		r.logger.Warn(logModule, "Failure for unknown payment ignored", map[string]interface{}{
			"reference": ref,
		})
		return fx, nil
	}
	// A failure arriving after settlement is stale.
	if p.Status != entity.PaymentStatusPending {
		return fx, nil
	}

	p.Status = entity.PaymentStatusFailed
	if err := uow.PaymentRepository().Update(ctx, p); err != nil {
		return nil, err
	}
	fx.emit(events.PaymentFailed, paymentEventData(p))

	r.logger.Info(logModule, "Payment failed", map[string]interface{}{
		"paymentId": p.Id.String(),
		"reference": ref,
	})

	if p.MealId == nil {
		return fx, nil
	}
	if err := r.releaseUnfundedMeal(ctx, uow, *p.MealId, fx); err != nil {
		return nil, err
	}
	return fx, nil
}

// releaseUnfundedMeal undoes an early confirmation once no live payment backs the meal,
// so the owner can check out again.
func (r *Reconciler) releaseUnfundedMeal(ctx context.Context, uow unitofwork.UnitOfWork, mealId uuid.UUID, fx *effects) error {
	meal, err := uow.MealRepository().FindOne(ctx, specification.ByID{ID: mealId}, specification.ForUpdate{})
	if err != nil {
		return err
	}
	if meal == nil || meal.PaymentStatus != entity.MealPaymentPaid {
		return nil
	}

	payments, err := uow.PaymentRepository().FindAll(ctx, specification.PaymentForMeal{MealID: mealId})
	if err != nil {
		return err
	}
	for _, other := range payments {
		if other.Status == entity.PaymentStatusPending || other.Status == entity.PaymentStatusCompleted {
			return nil
		}
	}

	meal.PaymentStatus = entity.MealPaymentUnpaid
	if meal.Status == entity.MealStatusConfirmed {
		meal.Status = entity.MealStatusPending
	}
	if err := uow.MealRepository().Update(ctx, meal); err != nil {
		return err
	}
	fx.emit(events.MealUnconfirmed, mealEventData(meal))

	r.logger.Warn(logModule, "Meal confirmation reverted after payment failure", map[string]interface{}{
		"mealId": meal.Id.String(),
		"userId": meal.UserId.String(),
	})
	return nil
}

func (r *Reconciler) applySubscriptionCancelled(ctx context.Context, uow unitofwork.UnitOfWork, ref string) (*effects, error) {
	fx := &effects{}

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByProcessorSubRef{Ref: ref}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		r.logger.Warn(logModule, "Cancellation for unknown subscription ignored", map[string]interface{}{
			"reference": ref,
		})
		return fx, nil
	}
	if sub.Status == entity.SubscriptionStatusCancelled {
		return fx, nil
	}

	sub.Status = entity.SubscriptionStatusCancelled
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}
	fx.emit(events.SubscriptionCancelled, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         sub.UserId.String(),
		"reference":       ref,
		"cancelled_by":    "processor",
	})

	r.logger.Info(logModule, "Subscription cancelled by processor", map[string]interface{}{
		"subscriptionId": sub.Id.String(),
		"reference":      ref,
	})
	return fx, nil
}

func mealEventData(meal *entity.Meal) map[string]interface{} {
	return map[string]interface{}{
		"meal_id":   meal.Id.String(),
		"user_id":   meal.UserId.String(),
		"meal_type": string(meal.MealType),
		"meal_date": meal.MealDate.Format(time.RFC3339),
	}
}
