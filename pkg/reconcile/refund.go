package reconcile

import (
	"context"
	"strings"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/events"
	"meal-ordering-be/pkg/payment"

	"github.com/google/uuid"
)

// RequestRefund returns the full amount of a completed payment through the processor.
// On processor failure nothing is changed and the error is returned; there is no retry.
func (r *Reconciler) RequestRefund(ctx context.Context, uow unitofwork.UnitOfWork, paymentId uuid.UUID, reason string) (*entity.Payment, error) {
	release, err := r.lock(ctx, locker.PaymentKey(paymentId.String()))
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.ErrPaymentNotFound
	}
	if p.Status == entity.PaymentStatusRefunded {
		return p, nil
	}
	if p.Status != entity.PaymentStatusCompleted {
		return nil, apperror.ErrNotRefundable
	}

	result, err := r.gateway.Refund(ctx, payment.RefundRequest{
		Reference:      p.ProcessorPaymentRef,
		Amount:         p.Amount,
		IdempotencyKey: "refund-" + p.Id.String(),
		Reason:         reason,
	})
	if err != nil {
		r.logger.Error(logModule, "Refund rejected by processor", map[string]interface{}{
			"paymentId": p.Id.String(),
			"reference": p.ProcessorPaymentRef,
			"error":     err.Error(),
		})
		if apperror.KindOf(err) == apperror.KindExternal {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.ErrRefundFailed, err)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	p, err = uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.ErrPaymentNotFound
	}

	refundRef := result.RefundRef
	p.Status = entity.PaymentStatusRefunded
	p.ProcessorRefundRef = &refundRef
	if err := uow.PaymentRepository().Update(ctx, p); err != nil {
		return nil, err
	}

	if p.MealId != nil {
		meal, err := uow.MealRepository().FindOne(ctx, specification.ByID{ID: *p.MealId}, specification.ForUpdate{})
		if err != nil {
			return nil, err
		}
		if meal != nil {
			meal.PaymentStatus = entity.MealPaymentRefunded
			if err := uow.MealRepository().Update(ctx, meal); err != nil {
				return nil, err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info(logModule, "Payment refunded", map[string]interface{}{
		"paymentId": p.Id.String(),
		"refundRef": refundRef,
		"amount":    p.Amount.StringFixed(2),
		"reason":    reason,
	})

	data := paymentEventData(p)
	data["refund_ref"] = refundRef
	data["reason"] = reason
	r.publish(ctx, []events.Event{events.New(events.PaymentRefunded, data)})

	return p, nil
}

// OpenRefundRequest queues a completed payment for admin review. Only one request
// per payment may be pending at a time.
func (r *Reconciler) OpenRefundRequest(ctx context.Context, uow unitofwork.UnitOfWork, principal entity.Principal, paymentId uuid.UUID, reason string) (*entity.RefundRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.WithMessage(apperror.ErrInvalidInput, "reason is required")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	p, err := uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.ErrPaymentNotFound
	}
	if !principal.Owns(p.UserId) {
		return nil, apperror.ErrUnauthorized
	}
	if p.Status != entity.PaymentStatusCompleted {
		return nil, apperror.ErrNotRefundable
	}

	pending, err := uow.RefundRepository().Count(ctx,
		specification.ByPaymentID{PaymentID: p.Id},
		specification.ByStatus{Status: string(entity.RefundStatusPending)},
	)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, apperror.ErrRefundPending
	}

	req := &entity.RefundRequest{
		PaymentId: p.Id,
		UserId:    p.UserId,
		Reason:    reason,
		Status:    entity.RefundStatusPending,
	}
	if err := uow.RefundRepository().Create(ctx, req); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info(logModule, "Refund request opened", map[string]interface{}{
		"refundId":  req.Id.String(),
		"paymentId": p.Id.String(),
		"userId":    p.UserId.String(),
	})
	r.publish(ctx, []events.Event{events.New(events.RefundRequested, map[string]interface{}{
		"refund_id":  req.Id.String(),
		"payment_id": p.Id.String(),
		"user_id":    p.UserId.String(),
		"amount":     p.Amount.StringFixed(2),
		"reason":     reason,
	})})

	return req, nil
}
