// Package testsupport builds throwaway sqlite-backed stores for package tests.
package testsupport

import (
	"context"
	"testing"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a fresh migrated in-memory database that is closed with the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLiteDB(uuid.NewString(), model.All()...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func NewFactory(t testing.TB) unitofwork.RepositoryFactory {
	t.Helper()
	return unitofwork.NewRepositoryFactory(NewDB(t))
}

// Clock returns a settable clock for injection into components.
type Clock struct {
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.now = now
}

func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func SeedUser(t testing.TB, factory unitofwork.RepositoryFactory, role entity.UserRole) *entity.User {
	t.Helper()

	handle := uuid.NewString()[:8]
	user := &entity.User{
		Username: "user_" + handle,
		Email:    handle + "@campus.test",
		FullName: "Test User " + handle,
		Role:     role,
		IsActive: true,
	}
	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.UserRepository().Create(context.Background(), user))
	return user
}

func SeedPlan(t testing.TB, factory unitofwork.RepositoryFactory, name string, price string, days int, active bool) *entity.MealPlan {
	t.Helper()

	plan := &entity.MealPlan{
		Name:          name,
		Description:   name + " plan",
		Price:         decimal.RequireFromString(price),
		DurationDays:  days,
		MealsIncluded: (days + 1) * 3,
		IsActive:      true,
	}
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.MealPlanRepository().Create(ctx, plan))
	if !active {
		plan.IsActive = false
		require.NoError(t, uow.MealPlanRepository().Update(ctx, plan))
	}
	return plan
}

func Principal(u *entity.User) entity.Principal {
	return entity.Principal{UserId: u.Id, Role: u.Role}
}

// FindMeal reads a meal outside any transaction.
func FindMeal(t testing.TB, factory unitofwork.RepositoryFactory, id uuid.UUID) *entity.Meal {
	t.Helper()
	meal, err := factory.NewUnitOfWork(context.Background()).MealRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, meal)
	return meal
}

func FindPayment(t testing.TB, factory unitofwork.RepositoryFactory, id uuid.UUID) *entity.Payment {
	t.Helper()
	p, err := factory.NewUnitOfWork(context.Background()).PaymentRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func FindSubscription(t testing.TB, factory unitofwork.RepositoryFactory, id uuid.UUID) *entity.Subscription {
	t.Helper()
	s, err := factory.NewUnitOfWork(context.Background()).SubscriptionRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func FindRefund(t testing.TB, factory unitofwork.RepositoryFactory, id uuid.UUID) *entity.RefundRequest {
	t.Helper()
	r, err := factory.NewUnitOfWork(context.Background()).RefundRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}
