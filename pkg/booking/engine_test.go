package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/internal/testsupport"
	"meal-ordering-be/pkg/booking"
	"meal-ordering-be/pkg/events"
	"meal-ordering-be/pkg/payment"
	"meal-ordering-be/pkg/payment/paymenttest"
	"meal-ordering-be/pkg/reconcile"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	factory    unitofwork.RepositoryFactory
	clock      *testsupport.Clock
	gateway    *paymenttest.Gateway
	recorder   *events.Recorder
	engine     *booking.Engine
	reconciler *reconcile.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		factory:  testsupport.NewFactory(t),
		clock:    testsupport.NewClock(monday),
		gateway:  paymenttest.NewGateway(),
		recorder: events.NewRecorder(),
	}
	l := locker.NewMemoryLocker()
	log := logger.NewNopLogger()
	f.reconciler = reconcile.NewReconciler(f.gateway, l, f.recorder, log, reconcile.WithClock(f.clock.Now))
	f.engine = booking.NewEngine(l, f.recorder, f.reconciler, log,
		booking.WithClock(f.clock.Now),
		booking.WithLocation(time.UTC),
	)
	return f
}

func (f *fixture) uow() unitofwork.UnitOfWork {
	return f.factory.NewUnitOfWork(context.Background())
}

func (f *fixture) bookLunch(t *testing.T, user *entity.User, day time.Time) *entity.Meal {
	t.Helper()
	meal, _, err := f.engine.BookMeal(context.Background(), f.uow(), testsupport.Principal(user), booking.MealBooking{
		Category: entity.MealCategoryLunch,
		Date:     day,
	})
	require.NoError(t, err)
	return meal
}

// payFor runs a meal through checkout and a completed notification.
func (f *fixture) payFor(t *testing.T, user *entity.User, meal *entity.Meal) *entity.Payment {
	t.Helper()
	ctx := context.Background()

	checkout, err := f.reconciler.BeginMealCheckout(ctx, f.uow(), testsupport.Principal(user), payment.Customer{}, meal.Id)
	require.NoError(t, err)

	_, err = f.reconciler.HandleNotification(ctx, f.uow(),
		paymenttest.Notify("settle-"+checkout.Payment.Id.String(), payment.EventCheckoutCompleted, checkout.Payment.ProcessorPaymentRef))
	require.NoError(t, err)
	return checkout.Payment
}

func TestBookMealCreatesPendingMealAndObligation(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	meal, obligation, err := f.engine.BookMeal(context.Background(), f.uow(), testsupport.Principal(user), booking.MealBooking{
		Category:           entity.MealCategoryLunch,
		Date:               time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		DietaryPreferences: "  vegetarian ",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MealStatusPending, meal.Status)
	assert.Equal(t, entity.MealPaymentUnpaid, meal.PaymentStatus)
	assert.Equal(t, time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC), meal.MealDate)
	require.NotNil(t, meal.DietaryPreferences)
	assert.Equal(t, "vegetarian", *meal.DietaryPreferences)
	assert.Nil(t, meal.SubscriptionId)

	assert.Equal(t, meal.Id, obligation.MealId)
	assert.True(t, obligation.Amount.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "Lunch - 2024-01-03", obligation.Description)
	assert.Equal(t, 1, f.recorder.Count(events.MealBooked))

	stored := testsupport.FindMeal(t, f.factory, meal.Id)
	assert.Equal(t, entity.MealStatusPending, stored.Status)
}

func TestBookMealRejectsDuplicateSlot(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	first := f.bookLunch(t, user, day)

	_, _, err := f.engine.BookMeal(context.Background(), f.uow(), testsupport.Principal(user), booking.MealBooking{
		Category: entity.MealCategoryLunch,
		Date:     day.Add(15 * time.Hour),
	})
	assert.ErrorIs(t, err, apperror.ErrDuplicateBooking)

	// Another category on the same day is a different slot.
	_, _, err = f.engine.BookMeal(context.Background(), f.uow(), testsupport.Principal(user), booking.MealBooking{
		Category: entity.MealCategoryDinner,
		Date:     day,
	})
	assert.NoError(t, err)

	// A cancelled meal frees its slot.
	_, err = f.engine.CancelMeal(context.Background(), f.uow(), testsupport.Principal(user), first.Id)
	require.NoError(t, err)
	f.bookLunch(t, user, day)
}

func TestBookMealSlotsArePerUser(t *testing.T) {
	f := newFixture(t)
	alice := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	bob := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	f.bookLunch(t, alice, day)
	f.bookLunch(t, bob, day)
}

func TestBookMealValidation(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	principal := testsupport.Principal(user)
	ctx := context.Background()

	_, _, err := f.engine.BookMeal(ctx, f.uow(), principal, booking.MealBooking{Category: "brunch", Date: monday.AddDate(0, 0, 1)})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	// Breakfast today was served at 08:00, before the 09:30 clock.
	_, _, err = f.engine.BookMeal(ctx, f.uow(), principal, booking.MealBooking{Category: entity.MealCategoryBreakfast, Date: monday})
	assert.ErrorIs(t, err, apperror.ErrPastDate)

	_, _, err = f.engine.BookMeal(ctx, f.uow(), principal, booking.MealBooking{Category: entity.MealCategoryLunch, Date: monday})
	assert.NoError(t, err)

	ghost := entity.Principal{UserId: uuid.New(), Role: entity.UserRoleStudent}
	_, _, err = f.engine.BookMeal(ctx, f.uow(), ghost, booking.MealBooking{Category: entity.MealCategoryDinner, Date: monday})
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}

func TestConcurrentBookingsOfOneSlotYieldOneMeal(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.engine.BookMeal(context.Background(), f.uow(), testsupport.Principal(user), booking.MealBooking{
				Category: entity.MealCategoryDinner,
				Date:     day,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperror.ErrDuplicateBooking):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, dupes)

	count, err := f.uow().MealRepository().Count(context.Background(),
		specification.UserOwnedBy{UserID: user.Id},
		specification.MealNotCancelled{},
	)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestBookSubscriptionExpandsMeals(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	result, err := f.engine.BookSubscription(context.Background(), f.uow(), testsupport.Principal(user), booking.SubscriptionBooking{
		PlanType:           entity.PlanCategoryWeekly,
		DietaryPreferences: "halal",
	})
	require.NoError(t, err)

	sub := result.Subscription
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, monday, sub.StartDate)
	assert.Equal(t, monday.AddDate(0, 0, 7), sub.EndDate)
	assert.Len(t, result.Meals, 24)
	assert.Zero(t, result.Skipped)

	stored, err := f.uow().MealRepository().FindAll(context.Background(), specification.MealsOfSubscription{SubscriptionID: sub.Id})
	require.NoError(t, err)
	require.Len(t, stored, 24)
	for _, m := range stored {
		assert.Equal(t, entity.MealStatusConfirmed, m.Status)
		assert.Equal(t, entity.MealPaymentPaid, m.PaymentStatus)
		require.NotNil(t, m.DietaryPreferences)
		assert.Equal(t, "halal", *m.DietaryPreferences)
	}
	assert.Equal(t, 1, f.recorder.Count(events.SubscriptionCreated))
	assert.Zero(t, f.gateway.CheckoutCount())
}

func TestBookSubscriptionMonthly(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	result, err := f.engine.BookSubscription(context.Background(), f.uow(), testsupport.Principal(user), booking.SubscriptionBooking{
		PlanType: entity.PlanCategoryMonthly,
	})
	require.NoError(t, err)

	assert.Equal(t, monday.AddDate(0, 0, 30), result.Subscription.EndDate)
	assert.Len(t, result.Meals, 93)
}

func TestBookSubscriptionRejectsSecondActive(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	principal := testsupport.Principal(user)
	ctx := context.Background()

	first, err := f.engine.BookSubscription(ctx, f.uow(), principal, booking.SubscriptionBooking{PlanType: entity.PlanCategoryWeekly})
	require.NoError(t, err)

	_, err = f.engine.BookSubscription(ctx, f.uow(), principal, booking.SubscriptionBooking{PlanType: entity.PlanCategoryMonthly})
	assert.ErrorIs(t, err, apperror.ErrDuplicateSubscription)

	// Renewing on the last day skips the slots the old subscription still holds.
	f.clock.Set(first.Subscription.EndDate.Add(time.Minute))
	renewed, err := f.engine.BookSubscription(ctx, f.uow(), principal, booking.SubscriptionBooking{PlanType: entity.PlanCategoryWeekly})
	require.NoError(t, err)
	assert.Equal(t, 3, renewed.Skipped)
	assert.Len(t, renewed.Meals, 21)
}

func TestConcurrentSubscriptionsYieldOneActive(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	principal := testsupport.Principal(user)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		plan := entity.PlanCategoryWeekly
		if i%2 == 1 {
			plan = entity.PlanCategoryMonthly
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.BookSubscription(context.Background(), f.uow(), principal, booking.SubscriptionBooking{PlanType: plan})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperror.ErrDuplicateSubscription):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)

	active, err := f.uow().SubscriptionRepository().Count(context.Background(),
		specification.UserOwnedBy{UserID: user.Id},
		specification.ActiveSubscriptionAt{Now: f.clock.Now()},
	)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)
}

func TestBookSubscriptionSkipsHeldSlots(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	f.bookLunch(t, user, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	result, err := f.engine.BookSubscription(context.Background(), f.uow(), testsupport.Principal(user), booking.SubscriptionBooking{
		PlanType: entity.PlanCategoryWeekly,
	})
	require.NoError(t, err)
	assert.Len(t, result.Meals, 23)
	assert.Equal(t, 1, result.Skipped)
}

func TestBookSubscriptionRejectsUnknownPlanType(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	_, err := f.engine.BookSubscription(context.Background(), f.uow(), testsupport.Principal(user), booking.SubscriptionBooking{
		PlanType: "yearly",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestCancelMealRules(t *testing.T) {
	f := newFixture(t)
	owner := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	other := testsupport.SeedUser(t, f.factory, entity.UserRoleAdmin)
	ctx := context.Background()

	meal := f.bookLunch(t, owner, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	_, err := f.engine.CancelMeal(ctx, f.uow(), testsupport.Principal(other), meal.Id)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.engine.CancelMeal(ctx, f.uow(), testsupport.Principal(owner), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrMealNotFound)

	result, err := f.engine.CancelMeal(ctx, f.uow(), testsupport.Principal(owner), meal.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.MealStatusCancelled, result.Meal.Status)
	assert.Equal(t, booking.RefundNotApplicable, result.Refund)
	assert.Equal(t, 1, f.recorder.Count(events.MealCancelled))

	_, err = f.engine.CancelMeal(ctx, f.uow(), testsupport.Principal(owner), meal.Id)
	assert.ErrorIs(t, err, apperror.ErrAlreadyCancelled)
	assert.Zero(t, f.gateway.RefundCount())
}

func TestCancelMealTooLate(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	meal := f.bookLunch(t, user, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	f.clock.Set(time.Date(2024, 1, 3, 12, 30, 0, 0, time.UTC))

	_, err := f.engine.CancelMeal(context.Background(), f.uow(), testsupport.Principal(user), meal.Id)
	assert.ErrorIs(t, err, apperror.ErrTooLate)
	assert.Equal(t, entity.MealStatusPending, testsupport.FindMeal(t, f.factory, meal.Id).Status)
}

func TestCancelPaidMealRefundsOnce(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	meal := f.bookLunch(t, user, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	paid := f.payFor(t, user, meal)
	require.Equal(t, entity.MealPaymentPaid, testsupport.FindMeal(t, f.factory, meal.Id).PaymentStatus)

	result, err := f.engine.CancelMeal(context.Background(), f.uow(), testsupport.Principal(user), meal.Id)
	require.NoError(t, err)
	assert.Equal(t, booking.RefundIssued, result.Refund)

	require.Equal(t, 1, f.gateway.RefundCount())
	assert.Equal(t, paid.ProcessorPaymentRef, f.gateway.Refunds[0].Reference)
	assert.True(t, f.gateway.Refunds[0].Amount.Equal(decimal.NewFromInt(12)))

	storedPayment := testsupport.FindPayment(t, f.factory, paid.Id)
	assert.Equal(t, entity.PaymentStatusRefunded, storedPayment.Status)
	require.NotNil(t, storedPayment.ProcessorRefundRef)
	assert.True(t, storedPayment.Amount.Equal(decimal.NewFromInt(12)))

	storedMeal := testsupport.FindMeal(t, f.factory, meal.Id)
	assert.Equal(t, entity.MealStatusCancelled, storedMeal.Status)
	assert.Equal(t, entity.MealPaymentRefunded, storedMeal.PaymentStatus)
	assert.Equal(t, 1, f.recorder.Count(events.PaymentRefunded))
}

func TestCancelPaidMealQueuesReviewWhenRefundFails(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	meal := f.bookLunch(t, user, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	paid := f.payFor(t, user, meal)

	f.gateway.RefundErr = errors.New("processor offline")
	result, err := f.engine.CancelMeal(context.Background(), f.uow(), testsupport.Principal(user), meal.Id)
	require.NoError(t, err)
	assert.Equal(t, booking.RefundUnderReview, result.Refund)
	require.NotNil(t, result.RefundRequest)
	assert.Equal(t, entity.RefundStatusPending, result.RefundRequest.Status)

	assert.Equal(t, entity.PaymentStatusCompleted, testsupport.FindPayment(t, f.factory, paid.Id).Status)
	storedMeal := testsupport.FindMeal(t, f.factory, meal.Id)
	assert.Equal(t, entity.MealStatusCancelled, storedMeal.Status)
	assert.Equal(t, entity.MealPaymentPaid, storedMeal.PaymentStatus)
}

func TestCancelSubscriptionMealNeverRefunds(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)

	result, err := f.engine.BookSubscription(context.Background(), f.uow(), testsupport.Principal(user), booking.SubscriptionBooking{
		PlanType: entity.PlanCategoryWeekly,
	})
	require.NoError(t, err)

	cancelled, err := f.engine.CancelMeal(context.Background(), f.uow(), testsupport.Principal(user), result.Meals[5].Id)
	require.NoError(t, err)
	assert.Equal(t, booking.RefundNotApplicable, cancelled.Refund)
	assert.Zero(t, f.gateway.RefundCount())
	assert.Equal(t, entity.MealPaymentPaid, testsupport.FindMeal(t, f.factory, result.Meals[5].Id).PaymentStatus)
}

func TestCancelBeforeSettlementRefundsOnLateCompletion(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	ctx := context.Background()

	meal := f.bookLunch(t, user, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	checkout, err := f.reconciler.BeginMealCheckout(ctx, f.uow(), testsupport.Principal(user), payment.Customer{}, meal.Id)
	require.NoError(t, err)
	_, err = f.reconciler.ConfirmPaymentSuccess(ctx, f.uow(), testsupport.Principal(user), meal.Id)
	require.NoError(t, err)

	result, err := f.engine.CancelMeal(ctx, f.uow(), testsupport.Principal(user), meal.Id)
	require.NoError(t, err)
	assert.Equal(t, booking.RefundAwaitingSettlement, result.Refund)
	assert.Zero(t, f.gateway.RefundCount())

	_, err = f.reconciler.HandleNotification(ctx, f.uow(),
		paymenttest.Notify("late-1", payment.EventCheckoutCompleted, checkout.Payment.ProcessorPaymentRef))
	require.NoError(t, err)

	assert.Equal(t, 1, f.gateway.RefundCount())
	assert.Equal(t, entity.PaymentStatusRefunded, testsupport.FindPayment(t, f.factory, checkout.Payment.Id).Status)
	storedMeal := testsupport.FindMeal(t, f.factory, meal.Id)
	assert.Equal(t, entity.MealStatusCancelled, storedMeal.Status)
	assert.Equal(t, entity.MealPaymentRefunded, storedMeal.PaymentStatus)
}

func TestCancelPaidMealWithOnlyFailedPayments(t *testing.T) {
	f := newFixture(t)
	user := testsupport.SeedUser(t, f.factory, entity.UserRoleStudent)
	ctx := context.Background()

	meal := f.bookLunch(t, user, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	checkout, err := f.reconciler.BeginMealCheckout(ctx, f.uow(), testsupport.Principal(user), payment.Customer{}, meal.Id)
	require.NoError(t, err)

	// A meal left marked paid by data written before failures released it.
	stored := testsupport.FindPayment(t, f.factory, checkout.Payment.Id)
	stored.Status = entity.PaymentStatusFailed
	require.NoError(t, f.uow().PaymentRepository().Update(ctx, stored))
	storedMeal := testsupport.FindMeal(t, f.factory, meal.Id)
	storedMeal.Status = entity.MealStatusConfirmed
	storedMeal.PaymentStatus = entity.MealPaymentPaid
	require.NoError(t, f.uow().MealRepository().Update(ctx, storedMeal))

	result, err := f.engine.CancelMeal(ctx, f.uow(), testsupport.Principal(user), meal.Id)
	require.NoError(t, err)
	assert.Equal(t, booking.RefundNotApplicable, result.Refund)
	assert.Zero(t, f.gateway.RefundCount())

	storedMeal = testsupport.FindMeal(t, f.factory, meal.Id)
	assert.Equal(t, entity.MealStatusCancelled, storedMeal.Status)
	assert.Equal(t, entity.MealPaymentUnpaid, storedMeal.PaymentStatus)
}
