package reconcile

import (
	"context"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/events"

	"github.com/google/uuid"
)

// ConfirmPaymentSuccess settles a meal when the user returns from checkout. It may
// run before or after the processor notification; both orders end confirmed and paid.
// The payment itself only completes through a verified notification.
func (r *Reconciler) ConfirmPaymentSuccess(ctx context.Context, uow unitofwork.UnitOfWork, principal entity.Principal, mealId uuid.UUID) (*entity.Meal, error) {
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	meal, err := uow.MealRepository().FindOne(ctx, specification.ByID{ID: mealId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return nil, apperror.ErrMealNotFound
	}
	if !principal.Owns(meal.UserId) {
		return nil, apperror.ErrUnauthorized
	}
	if meal.Status == entity.MealStatusConfirmed && meal.PaymentStatus == entity.MealPaymentPaid {
		return meal, nil
	}
	if meal.Status == entity.MealStatusCancelled {
		return nil, apperror.ErrAlreadyCancelled
	}

	payments, err := uow.PaymentRepository().FindAll(ctx, specification.PaymentForMeal{MealID: meal.Id})
	if err != nil {
		return nil, err
	}
	hasCheckout := false
	for _, p := range payments {
		if p.Status == entity.PaymentStatusPending || p.Status == entity.PaymentStatusCompleted {
			hasCheckout = true
			break
		}
	}
	if !hasCheckout {
		return nil, apperror.ErrPaymentNotFound
	}

	meal.Status = entity.MealStatusConfirmed
	meal.PaymentStatus = entity.MealPaymentPaid
	if err := uow.MealRepository().Update(ctx, meal); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info(logModule, "Meal confirmed after checkout", map[string]interface{}{
		"mealId": meal.Id.String(),
		"userId": meal.UserId.String(),
	})
	r.publish(ctx, []events.Event{events.New(events.MealConfirmed, mealEventData(meal))})

	return meal, nil
}
