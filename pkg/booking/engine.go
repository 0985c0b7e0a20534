// Package booking creates and cancels meals for one-time and subscription orders.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const logModule = "BOOKING"

// Refunder settles money for cancelled meals.
type Refunder interface {
	RequestRefund(ctx context.Context, uow unitofwork.UnitOfWork, paymentId uuid.UUID, reason string) (*entity.Payment, error)
	OpenRefundRequest(ctx context.Context, uow unitofwork.UnitOfWork, principal entity.Principal, paymentId uuid.UUID, reason string) (*entity.RefundRequest, error)
}

type MealBooking struct {
	Category           entity.MealCategory
	Date               time.Time
	DietaryPreferences string
}

// Obligation is the amount a one-time booking still owes.
type Obligation struct {
	MealId      uuid.UUID
	Amount      decimal.Decimal
	Description string
}

type SubscriptionBooking struct {
	PlanType           entity.PlanCategory
	DietaryPreferences string
}

type SubscriptionResult struct {
	Subscription *entity.Subscription
	Meals        []*entity.Meal
	// Skipped counts slots the user already held when the subscription started.
	Skipped int
}

type RefundOutcome string

const (
	RefundNotApplicable      RefundOutcome = "not_applicable"
	RefundIssued             RefundOutcome = "refunded"
	RefundAwaitingSettlement RefundOutcome = "awaiting_settlement"
	RefundUnderReview        RefundOutcome = "under_review"
	RefundFailed             RefundOutcome = "failed"
)

type Cancellation struct {
	Meal          *entity.Meal
	Refund        RefundOutcome
	Message       string
	RefundRequest *entity.RefundRequest
}

type Engine struct {
	locker      locker.Locker
	publisher   events.Publisher
	refunder    Refunder
	logger      logger.ILogger
	now         func() time.Time
	loc         *time.Location
	lockTimeout time.Duration
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithLockTimeout(d time.Duration) Option {
	return func(e *Engine) { e.lockTimeout = d }
}

func NewEngine(l locker.Locker, publisher events.Publisher, refunder Refunder, log logger.ILogger, opts ...Option) *Engine {
	e := &Engine{
		locker:      l,
		publisher:   publisher,
		refunder:    refunder,
		logger:      log,
		now:         time.Now,
		loc:         time.Local,
		lockTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now is the engine's current time in its location.
func (e *Engine) Now() time.Time {
	return e.clock()
}

func (e *Engine) clock() time.Time {
	return e.now().In(e.loc)
}

// lockUser serializes booking work for one user across the process (or cluster with redis).
func (e *Engine) lockUser(ctx context.Context, userId uuid.UUID) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, e.lockTimeout)
	defer cancel()

	release, err := e.locker.Lock(lockCtx, locker.UserKey(userId.String()))
	if err != nil {
		return nil, fmt.Errorf("acquire booking lock: %w", err)
	}
	return release, nil
}

func (e *Engine) loadUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId}, specification.ForUpdate{})
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrUserNotFound
	}
	return nil
}

// BookMeal creates a pending, unpaid meal and returns what the user owes for it.
func (e *Engine) BookMeal(ctx context.Context, uow unitofwork.UnitOfWork, principal entity.Principal, req MealBooking) (*entity.Meal, *Obligation, error) {
	if !req.Category.Valid() {
		return nil, nil, apperror.WithMessage(apperror.ErrInvalidInput, "meal_type must be breakfast, lunch or dinner")
	}

	scheduled := ScheduledAt(req.Date, req.Category, e.loc)
	if scheduled.Before(e.clock()) {
		return nil, nil, apperror.ErrPastDate
	}

	release, err := e.lockUser(ctx, principal.UserId)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	if err := e.loadUser(ctx, uow, principal.UserId); err != nil {
		return nil, nil, err
	}

	held, err := uow.MealRepository().Count(ctx,
		specification.UserOwnedBy{UserID: principal.UserId},
		specification.MealOfType{MealType: string(req.Category)},
		specification.MealOnDay{Day: scheduled},
		specification.MealNotCancelled{},
	)
	if err != nil {
		return nil, nil, err
	}
	if held > 0 {
		return nil, nil, apperror.ErrDuplicateBooking
	}

	meal := &entity.Meal{
		UserId:             principal.UserId,
		MealType:           req.Category,
		MealDate:           scheduled,
		Status:             entity.MealStatusPending,
		PaymentStatus:      entity.MealPaymentUnpaid,
		DietaryPreferences: dietary(req.DietaryPreferences),
	}
	if err := uow.MealRepository().Create(ctx, meal); err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	obligation := &Obligation{
		MealId:      meal.Id,
		Amount:      PriceFor(meal.MealType),
		Description: describeMeal(meal, e.loc),
	}

	e.logger.Info(logModule, "Meal booked", map[string]interface{}{
		"mealId":   meal.Id.String(),
		"userId":   meal.UserId.String(),
		"mealType": string(meal.MealType),
		"mealDate": meal.MealDate.Format(time.RFC3339),
		"amount":   obligation.Amount.StringFixed(2),
	})
	e.publish(ctx, events.MealBooked, map[string]interface{}{
		"meal_id":   meal.Id.String(),
		"user_id":   meal.UserId.String(),
		"meal_type": string(meal.MealType),
		"meal_date": meal.MealDate.Format(time.RFC3339),
		"amount":    obligation.Amount.StringFixed(2),
	})

	return meal, obligation, nil
}

// BookSubscription opens a subscription and expands it into confirmed, paid meals,
// three per day from today through the last covered day. Slots the user already
// holds are skipped, so fewer than (duration+1)*3 meals may be created.
func (e *Engine) BookSubscription(ctx context.Context, uow unitofwork.UnitOfWork, principal entity.Principal, req SubscriptionBooking) (*SubscriptionResult, error) {
	if req.PlanType != entity.PlanCategoryWeekly && req.PlanType != entity.PlanCategoryMonthly {
		return nil, apperror.WithMessage(apperror.ErrInvalidInput, "plan_type must be weekly or monthly")
	}

	release, err := e.lockUser(ctx, principal.UserId)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := e.loadUser(ctx, uow, principal.UserId); err != nil {
		return nil, err
	}

	now := e.clock()
	active, err := uow.SubscriptionRepository().Count(ctx,
		specification.UserOwnedBy{UserID: principal.UserId},
		specification.ActiveSubscriptionAt{Now: now},
	)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, apperror.ErrDuplicateSubscription
	}

	sub := &entity.Subscription{
		UserId:    principal.UserId,
		PlanType:  req.PlanType,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, req.PlanType.DurationDays()),
		Status:    entity.SubscriptionStatusActive,
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}

	slots := ExpandSubscription(sub.StartDate, sub.EndDate, e.loc)

	existing, err := uow.MealRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: principal.UserId},
		specification.MealNotCancelled{},
		specification.MealDateBetween{
			From: DayStart(sub.StartDate, e.loc),
			To:   DayStart(sub.EndDate, e.loc).AddDate(0, 0, 1),
		},
	)
	if err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(existing))
	for _, m := range existing {
		held[slotKey(m.MealType, m.MealDate, e.loc)] = true
	}

	meals := make([]*entity.Meal, 0, len(slots))
	for _, slot := range slots {
		if held[slotKey(slot.Category, slot.At, e.loc)] {
			continue
		}
		meals = append(meals, &entity.Meal{
			UserId:             principal.UserId,
			MealType:           slot.Category,
			MealDate:           slot.At,
			Status:             entity.MealStatusConfirmed,
			PaymentStatus:      entity.MealPaymentPaid,
			DietaryPreferences: dietary(req.DietaryPreferences),
			SubscriptionId:     &sub.Id,
		})
	}
	if err := uow.MealRepository().CreateBatch(ctx, meals); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	result := &SubscriptionResult{
		Subscription: sub,
		Meals:        meals,
		Skipped:      len(slots) - len(meals),
	}

	e.logger.Info(logModule, "Subscription booked", map[string]interface{}{
		"subscriptionId": sub.Id.String(),
		"userId":         sub.UserId.String(),
		"planType":       string(sub.PlanType),
		"mealsCreated":   len(meals),
		"mealsSkipped":   result.Skipped,
	})
	e.publish(ctx, events.SubscriptionCreated, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         sub.UserId.String(),
		"plan_type":       string(sub.PlanType),
		"start_date":      sub.StartDate.Format(time.RFC3339),
		"end_date":        sub.EndDate.Format(time.RFC3339),
		"meals_created":   len(meals),
	})

	return result, nil
}

// CancelMeal cancels an upcoming meal owned by the caller. A paid standalone meal
// gets exactly one automatic refund attempt; a failed attempt is queued for review.
func (e *Engine) CancelMeal(ctx context.Context, uow unitofwork.UnitOfWork, principal entity.Principal, mealId uuid.UUID) (*Cancellation, error) {
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
	if meal.Status == entity.MealStatusCancelled {
		return nil, apperror.ErrAlreadyCancelled
	}
	if meal.MealDate.Before(e.clock()) {
		return nil, apperror.ErrTooLate
	}

	var settled *entity.Payment
	outcome := RefundNotApplicable
	if meal.IsStandalone() && meal.PaymentStatus == entity.MealPaymentPaid {
		settled, outcome, err = e.findSettlement(ctx, uow, meal)
		if err != nil {
			return nil, err
		}
		if outcome == RefundNotApplicable {
			meal.PaymentStatus = entity.MealPaymentUnpaid
		}
	}

	meal.Status = entity.MealStatusCancelled
	if err := uow.MealRepository().Update(ctx, meal); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	e.logger.Info(logModule, "Meal cancelled", map[string]interface{}{
		"mealId":   meal.Id.String(),
		"userId":   meal.UserId.String(),
		"paid":     meal.PaymentStatus == entity.MealPaymentPaid,
		"refund":   string(outcome),
	})
	e.publish(ctx, events.MealCancelled, map[string]interface{}{
		"meal_id":   meal.Id.String(),
		"user_id":   meal.UserId.String(),
		"meal_type": string(meal.MealType),
		"meal_date": meal.MealDate.Format(time.RFC3339),
	})

	result := &Cancellation{Meal: meal, Refund: outcome, Message: outcomeMessage(outcome)}
	if settled == nil {
		return result, nil
	}

	if _, err := e.refunder.RequestRefund(ctx, uow, settled.Id, "Meal cancelled by user"); err != nil {
		e.logger.Warn(logModule, "Automatic refund failed", map[string]interface{}{
			"mealId":    meal.Id.String(),
			"paymentId": settled.Id.String(),
			"error":     err.Error(),
		})

		req, reqErr := e.refunder.OpenRefundRequest(ctx, uow, principal, settled.Id,
			"Automatic refund failed after meal cancellation: "+err.Error())
		if reqErr != nil {
			e.logger.Error(logModule, "Failed to queue refund for review", map[string]interface{}{
				"paymentId": settled.Id.String(),
				"error":     reqErr.Error(),
			})
			result.Refund = RefundFailed
			result.Message = outcomeMessage(RefundFailed)
			return result, nil
		}
		result.Refund = RefundUnderReview
		result.Message = outcomeMessage(RefundUnderReview)
		result.RefundRequest = req
		return result, nil
	}

	result.Meal.PaymentStatus = entity.MealPaymentRefunded
	result.Refund = RefundIssued
	result.Message = outcomeMessage(RefundIssued)
	return result, nil
}

// findSettlement locates the payment behind a paid standalone meal.
func (e *Engine) findSettlement(ctx context.Context, uow unitofwork.UnitOfWork, meal *entity.Meal) (*entity.Payment, RefundOutcome, error) {
	payments, err := uow.PaymentRepository().FindAll(ctx,
		specification.PaymentForMeal{MealID: meal.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, "", err
	}

	var pending *entity.Payment
	failed := 0
	for _, p := range payments {
		switch p.Status {
		case entity.PaymentStatusCompleted:
			return p, RefundIssued, nil
		case entity.PaymentStatusPending:
			if pending == nil {
				pending = p
			}
		case entity.PaymentStatusFailed:
			failed++
		}
	}
	if pending != nil {
		// Settles through the webhook later; the reconciler refunds it then.
		return nil, RefundAwaitingSettlement, nil
	}
	if failed > 0 && failed == len(payments) {
		// Every attempt failed, nothing was collected.
		return nil, RefundNotApplicable, nil
	}
	return nil, "", apperror.Wrap(apperror.ErrInvariant,
		fmt.Errorf("meal %s is marked paid without a settled payment", meal.Id))
}

func (e *Engine) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		e.logger.Warn(logModule, "Failed to publish event", map[string]interface{}{
			"eventType": eventType,
			"error":     err.Error(),
		})
	}
}

func outcomeMessage(outcome RefundOutcome) string {
	switch outcome {
	case RefundIssued:
		return "Meal cancelled and payment refunded"
	case RefundAwaitingSettlement:
		return "Meal cancelled. The payment will be refunded once it settles"
	case RefundUnderReview:
		return "Meal cancelled. The automatic refund failed and a refund request was opened for review"
	case RefundFailed:
		return "Meal cancelled. The refund could not be processed; please contact support"
	default:
		return "Meal cancelled"
	}
}

func describeMeal(meal *entity.Meal, loc *time.Location) string {
	category := string(meal.MealType)
	if category != "" {
		category = strings.ToUpper(category[:1]) + category[1:]
	}
	return category + " - " + meal.MealDate.In(loc).Format("2006-01-02")
}

func dietary(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}
