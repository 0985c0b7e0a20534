package reconcile

import (
	"context"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/booking"
	"meal-ordering-be/pkg/payment"

	"github.com/google/uuid"
)

// Checkout is a hosted checkout the user should be redirected to.
type Checkout struct {
	Payment     *entity.Payment
	Token       string
	RedirectURL string
	// Reused is set when an open checkout already existed for the obligation.
	Reused bool
}

// BeginMealCheckout opens at most one pending payment for a standalone meal.
// The processor is called before anything is stored, so a processor failure leaves no record.
func (r *Reconciler) BeginMealCheckout(ctx context.Context, uow unitofwork.UnitOfWork, principal entity.Principal, customer payment.Customer, mealId uuid.UUID) (*Checkout, error) {
	release, err := r.lock(ctx, locker.UserKey(principal.UserId.String()))
	if err != nil {
		return nil, err
	}
	defer release()

	meal, err := uow.MealRepository().FindOne(ctx, specification.ByID{ID: mealId})
	if err != nil {
		return nil, err
	}
	if err := checkMealPayable(principal, meal); err != nil {
		return nil, err
	}

	open, err := findOpenPayment(ctx, uow, specification.PaymentForMeal{MealID: meal.Id})
	if err != nil {
		return nil, err
	}
	if open != nil {
		return &Checkout{Payment: open, RedirectURL: open.CheckoutURL, Reused: true}, nil
	}

	paymentId := uuid.New()
	amount := booking.PriceFor(meal.MealType)
	session, err := r.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		OrderId:     paymentId.String(),
		Amount:      amount,
		ItemId:      "meal-" + string(meal.MealType),
		Description: string(meal.MealType) + " " + meal.MealDate.Format("2006-01-02"),
		Customer:    customer,
	})
	if err != nil {
		r.logger.Error(logModule, "Checkout creation failed", map[string]interface{}{
			"mealId": meal.Id.String(),
			"error":  err.Error(),
		})
		return nil, asProcessorError(err)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	meal, err = uow.MealRepository().FindOne(ctx, specification.ByID{ID: mealId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if err := checkMealPayable(principal, meal); err != nil {
		return nil, err
	}

	p := &entity.Payment{
		Id:                  paymentId,
		UserId:              principal.UserId,
		Amount:              amount,
		PaymentType:         entity.PaymentTypeOneTime,
		Status:              entity.PaymentStatusPending,
		ProcessorPaymentRef: session.Reference,
		CheckoutURL:         session.RedirectURL,
		MealId:              &meal.Id,
	}
	if err := uow.PaymentRepository().Create(ctx, p); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info(logModule, "Meal checkout started", map[string]interface{}{
		"paymentId": p.Id.String(),
		"mealId":    meal.Id.String(),
		"amount":    p.Amount.StringFixed(2),
	})

	return &Checkout{Payment: p, Token: session.Token, RedirectURL: session.RedirectURL}, nil
}

func checkMealPayable(principal entity.Principal, meal *entity.Meal) error {
	if meal == nil {
		return apperror.ErrMealNotFound
	}
	if !principal.Owns(meal.UserId) {
		return apperror.ErrUnauthorized
	}
	if meal.Status == entity.MealStatusCancelled {
		return apperror.ErrAlreadyCancelled
	}
	if !meal.IsStandalone() || meal.PaymentStatus != entity.MealPaymentUnpaid {
		return apperror.ErrAlreadyPaid
	}
	return nil
}

// findOpenPayment returns the pending payment for an obligation, or ErrAlreadyPaid when one settled.
func findOpenPayment(ctx context.Context, uow unitofwork.UnitOfWork, scope specification.Specification) (*entity.Payment, error) {
	payments, err := uow.PaymentRepository().FindAll(ctx, scope, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	var open *entity.Payment
	for _, p := range payments {
		switch p.Status {
		case entity.PaymentStatusCompleted, entity.PaymentStatusRefunded:
			return nil, apperror.ErrAlreadyPaid
		case entity.PaymentStatusPending:
			if open == nil {
				open = p
			}
		}
	}
	return open, nil
}

// BeginSubscriptionCheckout bills a usable subscription at the price of an active catalog plan.
func (r *Reconciler) BeginSubscriptionCheckout(ctx context.Context, uow unitofwork.UnitOfWork, principal entity.Principal, customer payment.Customer, subscriptionId, planId uuid.UUID) (*Checkout, error) {
	release, err := r.lock(ctx, locker.UserKey(principal.UserId.String()))
	if err != nil {
		return nil, err
	}
	defer release()

	now := r.now()
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return nil, err
	}
	if err := checkSubscriptionBillable(principal, sub, now); err != nil {
		return nil, err
	}

	plan, err := uow.MealPlanRepository().FindOne(ctx, specification.ByID{ID: planId})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperror.ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, apperror.ErrPlanInactive
	}

	open, err := findOpenPayment(ctx, uow, specification.PaymentForSubscription{SubscriptionID: sub.Id})
	if err != nil {
		return nil, err
	}
	if open != nil {
		return &Checkout{Payment: open, RedirectURL: open.CheckoutURL, Reused: true}, nil
	}

	paymentId := uuid.New()
	session, err := r.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		OrderId:     paymentId.String(),
		Amount:      plan.Price,
		ItemId:      "plan-" + plan.Id.String(),
		Description: plan.Name + " (" + string(sub.PlanType) + ")",
		Customer:    customer,
	})
	if err != nil {
		r.logger.Error(logModule, "Subscription checkout creation failed", map[string]interface{}{
			"subscriptionId": sub.Id.String(),
			"error":          err.Error(),
		})
		return nil, asProcessorError(err)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sub, err = uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if err := checkSubscriptionBillable(principal, sub, now); err != nil {
		return nil, err
	}

	p := &entity.Payment{
		Id:                  paymentId,
		UserId:              principal.UserId,
		Amount:              plan.Price,
		PaymentType:         entity.PaymentTypeSubscription,
		Status:              entity.PaymentStatusPending,
		ProcessorPaymentRef: session.Reference,
		CheckoutURL:         session.RedirectURL,
		SubscriptionId:      &sub.Id,
	}
	if err := uow.PaymentRepository().Create(ctx, p); err != nil {
		return nil, err
	}

	ref := session.Reference
	sub.ProcessorSubRef = &ref
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info(logModule, "Subscription checkout started", map[string]interface{}{
		"paymentId":      p.Id.String(),
		"subscriptionId": sub.Id.String(),
		"planId":         plan.Id.String(),
		"amount":         p.Amount.StringFixed(2),
	})

	return &Checkout{Payment: p, Token: session.Token, RedirectURL: session.RedirectURL}, nil
}

func checkSubscriptionBillable(principal entity.Principal, sub *entity.Subscription, now time.Time) error {
	if sub == nil {
		return apperror.ErrSubscriptionNotFound
	}
	if !principal.Owns(sub.UserId) {
		return apperror.ErrUnauthorized
	}
	if !sub.IsUsable(now) {
		return apperror.ErrSubscriptionInactive
	}
	return nil
}

func asProcessorError(err error) error {
	if apperror.KindOf(err) == apperror.KindExternal {
		return err
	}
	return apperror.Wrap(apperror.ErrProcessor, err)
}
