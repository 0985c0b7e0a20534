package integration

import (
	"context"
	"testing"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	db, _ := connect(t)

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(db)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.MealRepository())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Live slot index rejects a second booking", func(t *testing.T) {
		user := seedAccount(t, db, entity.UserRoleStudent)
		slot := time.Now().UTC().AddDate(0, 0, 5).Truncate(time.Hour)

		meal := func() *entity.Meal {
			return &entity.Meal{
				UserId:        user.Id,
				MealType:      entity.MealCategoryLunch,
				MealDate:      slot,
				Status:        entity.MealStatusPending,
				PaymentStatus: entity.MealPaymentUnpaid,
			}
		}

		repo := uowFactory.NewUnitOfWork(context.Background()).MealRepository()
		first := meal()
		require.NoError(t, repo.Create(context.Background(), first))
		assert.Error(t, repo.Create(context.Background(), meal()))

		first.Status = entity.MealStatusCancelled
		require.NoError(t, repo.Update(context.Background(), first))
		assert.NoError(t, repo.Create(context.Background(), meal()))
	})

	t.Run("Rollback discards the transaction", func(t *testing.T) {
		user := seedAccount(t, db, entity.UserRoleStudent)
		ctx := context.Background()

		tx := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, tx.Begin(ctx))
		require.NoError(t, tx.MealRepository().Create(ctx, &entity.Meal{
			UserId:        user.Id,
			MealType:      entity.MealCategoryBreakfast,
			MealDate:      time.Now().UTC().AddDate(0, 0, 6).Truncate(time.Hour),
			Status:        entity.MealStatusPending,
			PaymentStatus: entity.MealPaymentUnpaid,
		}))
		require.NoError(t, tx.Rollback())

		count, err := uowFactory.NewUnitOfWork(ctx).MealRepository().Count(ctx, specification.UserOwnedBy{UserID: user.Id})
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
