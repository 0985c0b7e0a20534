package service

import (
	"context"
	"testing"
	"time"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminOperationsRejectNonAdmins(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, staff := s.seed(t, entity.UserRoleStaff)

	_, err := s.admin.GetDashboardStats(ctx, staff)
	assert.ErrorIs(t, err, apperror.ErrAdminOnly)
	_, err = s.admin.GetAllUsers(ctx, staff, dto.AdminUserListQuery{})
	assert.ErrorIs(t, err, apperror.ErrAdminOnly)
	_, err = s.admin.GetRefunds(ctx, staff, dto.PageQuery{})
	assert.ErrorIs(t, err, apperror.ErrAdminOnly)
	_, err = s.admin.ApproveRefund(ctx, staff, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrAdminOnly)
	_, err = s.admin.GetSystemLogs(ctx, staff, dto.PageQuery{})
	assert.ErrorIs(t, err, apperror.ErrAdminOnly)
}

func TestAdminListsUsersWithPaging(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, admin := s.seed(t, entity.UserRoleAdmin)
	for i := 0; i < 3; i++ {
		s.seed(t, entity.UserRoleStudent)
	}

	page, err := s.admin.GetAllUsers(ctx, admin, dto.AdminUserListQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Limit)
}

func TestAdminUpdatesUser(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, admin := s.seed(t, entity.UserRoleAdmin)
	target, _ := s.seed(t, entity.UserRoleStudent)

	role := "staff"
	active := false
	res, err := s.admin.UpdateUser(ctx, admin, target.Id, dto.AdminUpdateUserRequest{Role: &role, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, "staff", res.Role)
	assert.False(t, res.IsActive)
	assert.Equal(t, 1, s.recorder.Count(events.UserUpdated))
}

func TestAdminRefundDecisionFlow(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, admin := s.seed(t, entity.UserRoleAdmin)
	_, student := s.seed(t, entity.UserRoleStudent)

	requestFor := func(day string) uuid.UUID {
		booked, err := s.meals.BookMeal(ctx, student, dto.BookMealRequest{MealType: "dinner", MealDate: day})
		require.NoError(t, err)
		checkout, err := s.pay.BeginMealCheckout(ctx, student, booked.Meal.Id)
		require.NoError(t, err)
		s.settle(t, checkout.PaymentId)
		res, err := s.pay.RequestRefund(ctx, student, dto.UserRefundRequest{PaymentId: checkout.PaymentId, Reason: "Travelling for a conference"})
		require.NoError(t, err)
		return uuid.MustParse(res.RefundId)
	}
	approveId := requestFor("2024-01-02")
	rejectId := requestFor("2024-01-03")

	pending, err := s.admin.GetRefunds(ctx, admin, dto.PageQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Total)

	approved, err := s.admin.ApproveRefund(ctx, admin, approveId)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "refunded", approved.PaymentStatus)
	assert.False(t, approved.ProcessedAt.IsZero())

	rejected, err := s.admin.RejectRefund(ctx, admin, rejectId)
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)

	_, err = s.admin.RejectRefund(ctx, admin, approveId)
	assert.ErrorIs(t, err, apperror.ErrAlreadyProcessed)

	pending, err = s.admin.GetRefunds(ctx, admin, dto.PageQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Total)
	assert.Equal(t, 1, s.gateway.RefundCount())
}

func TestAdminSubscriptionsByEffectiveStatus(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, admin := s.seed(t, entity.UserRoleAdmin)
	_, student := s.seed(t, entity.UserRoleStudent)

	booked, err := s.meals.BookSubscription(ctx, student, dto.BookSubscriptionRequest{PlanType: "weekly"})
	require.NoError(t, err)

	active, err := s.admin.GetSubscriptions(ctx, admin, dto.PageQuery{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "active", active.Items[0].Status)

	// A week and a day later the subscription has lapsed without any write.
	s.clock.Advance(8 * 24 * time.Hour)
	expired, err := s.admin.GetSubscriptions(ctx, admin, dto.PageQuery{Status: "expired"})
	require.NoError(t, err)
	require.Len(t, expired.Items, 1)
	assert.Equal(t, "expired", expired.Items[0].Status)

	_, err = s.admin.CancelSubscription(ctx, admin, booked.Subscription.Id)
	assert.ErrorIs(t, err, apperror.ErrSubscriptionInactive)

	_, err = s.admin.GetSubscriptions(ctx, admin, dto.PageQuery{Status: "paused"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestAdminCancelsActiveSubscription(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, admin := s.seed(t, entity.UserRoleAdmin)
	_, student := s.seed(t, entity.UserRoleStudent)

	booked, err := s.meals.BookSubscription(ctx, student, dto.BookSubscriptionRequest{PlanType: "weekly"})
	require.NoError(t, err)

	cancelled, err := s.admin.CancelSubscription(ctx, admin, booked.Subscription.Id)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, 1, s.recorder.Count(events.SubscriptionCancelled))

	current, err := s.meals.GetCurrentSubscription(ctx, student)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestAdminLogDetailNotFound(t *testing.T) {
	s := newServices(t)
	_, admin := s.seed(t, entity.UserRoleAdmin)

	logs, err := s.admin.GetSystemLogs(context.Background(), admin, dto.PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = s.admin.GetLogDetail(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, apperror.ErrLogNotFound)
}

func TestAdminDashboardAndExport(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, admin := s.seed(t, entity.UserRoleAdmin)
	_, student := s.seed(t, entity.UserRoleStudent)

	_, err := s.meals.BookMeal(ctx, student, dto.BookMealRequest{MealType: "dinner", MealDate: "2024-01-01"})
	require.NoError(t, err)

	stats, err := s.admin.GetDashboardStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.MealsToday)

	rows, err := s.admin.Export(ctx, admin, "meals")
	require.NoError(t, err)
	assert.NotNil(t, rows)

	_, err = s.admin.Export(ctx, admin, "payments")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
