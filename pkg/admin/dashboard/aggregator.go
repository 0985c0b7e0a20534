package dashboard

import (
	"context"
	"time"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/mapper"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	adminMapper "meal-ordering-be/pkg/admin/mapper"
)

const (
	// DailyWindow is how many calendar days the daily meal series covers, today included.
	DailyWindow = 30
	recentLimit = 5

	ExportUsers = "users"
	ExportMeals = "meals"
)

// Aggregator handles dashboard statistics
type Aggregator struct {
	logger   logger.ILogger
	now      func() time.Time
	location *time.Location
}

// NewAggregator creates a new dashboard aggregator. Calendar days are cut in loc.
func NewAggregator(logger logger.ILogger, now func() time.Time, loc *time.Location) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		logger:   logger,
		now:      now,
		location: loc,
	}
}

// GetStats retrieves dashboard statistics
func (a *Aggregator) GetStats(ctx context.Context, uow unitofwork.UnitOfWork) (*dto.AdminDashboardStats, error) {
	now := a.now().In(a.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.location)

	totalUsers, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	activeSubs, err := uow.SubscriptionRepository().Count(ctx, specification.ActiveSubscriptionAt{Now: now.UTC()})
	if err != nil {
		return nil, err
	}

	mealsToday, err := uow.MealRepository().Count(ctx, specification.MealOnDay{Day: today}, specification.MealNotCancelled{})
	if err != nil {
		return nil, err
	}

	pendingRefunds, err := uow.RefundRepository().Count(ctx, specification.ByStatus{Status: string(entity.RefundStatusPending)})
	if err != nil {
		return nil, err
	}

	revenue, err := uow.PaymentRepository().SumRevenue(ctx)
	if err != nil {
		return nil, err
	}

	byCategory, err := uow.MealRepository().CountByCategory(ctx, specification.MealNotCancelled{})
	if err != nil {
		return nil, err
	}
	mealTypeStats := make([]dto.MealTypeStat, 0, len(byCategory))
	for _, c := range byCategory {
		mealTypeStats = append(mealTypeStats, dto.MealTypeStat{MealType: string(c.MealType), Count: c.Count})
	}

	daily, err := a.dailyMeals(ctx, uow, today)
	if err != nil {
		return nil, err
	}

	recentPayments, err := uow.PaymentRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: recentLimit},
	)
	if err != nil {
		return nil, err
	}
	payments := make([]*dto.PaymentResponse, 0, len(recentPayments))
	for _, p := range recentPayments {
		payments = append(payments, mapper.PaymentToResponse(p))
	}

	recentUsers, err := uow.UserRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: recentLimit},
	)
	if err != nil {
		return nil, err
	}
	users := make([]*dto.AdminUserResponse, 0, len(recentUsers))
	for _, u := range recentUsers {
		users = append(users, mapper.UserToAdminResponse(u))
	}

	return &dto.AdminDashboardStats{
		TotalUsers:          totalUsers,
		ActiveSubscriptions: activeSubs,
		MealsToday:          mealsToday,
		PendingRefunds:      pendingRefunds,
		Revenue: dto.RevenueStats{
			Total:        revenue.Total,
			Subscription: revenue.Subscription,
			OneTime:      revenue.OneTime,
		},
		MealTypeStats:  mealTypeStats,
		DailyMeals:     daily,
		RecentPayments: payments,
		RecentUsers:    users,
	}, nil
}

// dailyMeals counts non-cancelled meals per calendar day for the window ending today.
// Every day of the window is present, oldest first, zero-filled.
func (a *Aggregator) dailyMeals(ctx context.Context, uow unitofwork.UnitOfWork, today time.Time) ([]dto.DailyMealStat, error) {
	from := today.AddDate(0, 0, -(DailyWindow - 1))
	dates, err := uow.MealRepository().ListMealDates(ctx,
		specification.MealDateBetween{From: from.UTC(), To: today.AddDate(0, 0, 1).UTC()},
		specification.MealNotCancelled{},
	)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, DailyWindow)
	for _, d := range dates {
		counts[d.In(a.location).Format(time.DateOnly)]++
	}

	series := make([]dto.DailyMealStat, 0, DailyWindow)
	for i := 0; i < DailyWindow; i++ {
		key := from.AddDate(0, 0, i).Format(time.DateOnly)
		series = append(series, dto.DailyMealStat{Date: key, Count: counts[key]})
	}
	return series, nil
}

// Export dumps users or meals as flat rows.
func (a *Aggregator) Export(ctx context.Context, uow unitofwork.UnitOfWork, kind string) (interface{}, error) {
	switch kind {
	case ExportUsers:
		users, err := uow.UserRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
		if err != nil {
			return nil, err
		}
		a.logger.Info("ADMIN", "Users exported", map[string]interface{}{"rows": len(users)})
		return adminMapper.UsersToExportRows(users), nil
	case ExportMeals:
		meals, err := uow.MealRepository().FindAll(ctx, specification.OrderBy{Field: "meal_date"})
		if err != nil {
			return nil, err
		}
		a.logger.Info("ADMIN", "Meals exported", map[string]interface{}{"rows": len(meals)})
		return adminMapper.MealsToExportRows(meals), nil
	default:
		return nil, apperror.WithMessage(apperror.ErrInvalidInput, "export type must be users or meals")
	}
}

// GetLogs pages through the application log file, newest first.
func (a *Aggregator) GetLogs(level string, page, limit int) ([]logger.LogEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return a.logger.GetLogs(level, limit, (page-1)*limit)
}

func (a *Aggregator) GetLog(id string) (*logger.LogEntry, error) {
	return a.logger.GetLogById(id)
}
