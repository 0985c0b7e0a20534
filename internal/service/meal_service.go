package service

import (
	"context"
	"time"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/mapper"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/booking"

	"github.com/google/uuid"
)

const (
	historyPageSize = 20
	dashboardLimit  = 5
)

type IMealService interface {
	BookMeal(ctx context.Context, principal entity.Principal, req dto.BookMealRequest) (*dto.BookMealResponse, error)
	BookSubscription(ctx context.Context, principal entity.Principal, req dto.BookSubscriptionRequest) (*dto.BookSubscriptionResponse, error)
	CancelMeal(ctx context.Context, principal entity.Principal, mealId uuid.UUID) (*dto.CancelMealResponse, error)

	GetHistory(ctx context.Context, principal entity.Principal, query dto.MealHistoryQuery) (*dto.MealHistoryResponse, error)
	GetCurrentSubscription(ctx context.Context, principal entity.Principal) (*dto.SubscriptionResponse, error)
	GetDashboard(ctx context.Context, principal entity.Principal) (*dto.UserDashboardResponse, error)
}

type mealService struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *booking.Engine
}

func NewMealService(uowFactory unitofwork.RepositoryFactory, engine *booking.Engine) IMealService {
	return &mealService{
		uowFactory: uowFactory,
		engine:     engine,
	}
}

func (s *mealService) BookMeal(ctx context.Context, principal entity.Principal, req dto.BookMealRequest) (*dto.BookMealResponse, error) {
	day, err := s.parseDay(req.MealDate, "meal_date")
	if err != nil {
		return nil, err
	}

	meal, obligation, err := s.engine.BookMeal(ctx, s.uowFactory.NewUnitOfWork(ctx), principal, booking.MealBooking{
		Category:           entity.MealCategory(req.MealType),
		Date:               day,
		DietaryPreferences: req.DietaryPreferences,
	})
	if err != nil {
		return nil, err
	}

	return &dto.BookMealResponse{
		Meal: mapper.MealToResponse(meal),
		Obligation: &dto.PaymentObligation{
			MealId:      obligation.MealId,
			Amount:      obligation.Amount,
			Description: obligation.Description,
		},
	}, nil
}

func (s *mealService) BookSubscription(ctx context.Context, principal entity.Principal, req dto.BookSubscriptionRequest) (*dto.BookSubscriptionResponse, error) {
	result, err := s.engine.BookSubscription(ctx, s.uowFactory.NewUnitOfWork(ctx), principal, booking.SubscriptionBooking{
		PlanType:           entity.PlanCategory(req.PlanType),
		DietaryPreferences: req.DietaryPreferences,
	})
	if err != nil {
		return nil, err
	}

	return &dto.BookSubscriptionResponse{
		Subscription: mapper.SubscriptionToResponse(result.Subscription, result.Subscription.EffectiveStatus(s.engine.Now())),
		MealsCreated: len(result.Meals),
		MealsSkipped: result.Skipped,
	}, nil
}

func (s *mealService) CancelMeal(ctx context.Context, principal entity.Principal, mealId uuid.UUID) (*dto.CancelMealResponse, error) {
	result, err := s.engine.CancelMeal(ctx, s.uowFactory.NewUnitOfWork(ctx), principal, mealId)
	if err != nil {
		return nil, err
	}

	res := &dto.CancelMealResponse{
		Meal:          mapper.MealToResponse(result.Meal),
		RefundStatus:  string(result.Refund),
		RefundMessage: result.Message,
	}
	if result.RefundRequest != nil {
		id := result.RefundRequest.Id
		res.RefundRequestId = &id
	}
	return res, nil
}

func (s *mealService) GetHistory(ctx context.Context, principal entity.Principal, query dto.MealHistoryQuery) (*dto.MealHistoryResponse, error) {
	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = historyPageSize
	}

	filter := []specification.Specification{specification.UserOwnedBy{UserID: principal.UserId}}
	if query.Status != "" {
		filter = append(filter, specification.Filter("status", query.Status))
	}

	var window specification.MealDateBetween
	if query.DateFrom != "" {
		from, err := s.parseDay(query.DateFrom, "date_from")
		if err != nil {
			return nil, err
		}
		window.From = from.UTC()
	}
	if query.DateTo != "" {
		to, err := s.parseDay(query.DateTo, "date_to")
		if err != nil {
			return nil, err
		}
		window.To = to.AddDate(0, 0, 1).UTC()
	}
	filter = append(filter, window)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.MealRepository().Count(ctx, filter...)
	if err != nil {
		return nil, err
	}

	specs := append(filter,
		specification.OrderBy{Field: "meal_date", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	meals, err := uow.MealRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	return &dto.MealHistoryResponse{
		Meals: mapper.MealsToResponse(meals),
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

// GetCurrentSubscription returns nil when the user holds no usable subscription.
func (s *mealService) GetCurrentSubscription(ctx context.Context, principal entity.Principal) (*dto.SubscriptionResponse, error) {
	sub, err := s.currentSubscription(ctx, s.uowFactory.NewUnitOfWork(ctx), principal.UserId)
	if err != nil || sub == nil {
		return nil, err
	}
	return mapper.SubscriptionToResponse(sub, entity.SubscriptionStatusActive), nil
}

func (s *mealService) GetDashboard(ctx context.Context, principal entity.Principal) (*dto.UserDashboardResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.engine.Now()

	res := &dto.UserDashboardResponse{}

	sub, err := s.currentSubscription(ctx, uow, principal.UserId)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		res.Subscription = mapper.SubscriptionToResponse(sub, entity.SubscriptionStatusActive)
	}

	upcoming, err := uow.MealRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: principal.UserId},
		specification.MealNotCancelled{},
		specification.MealDateBetween{From: now.UTC()},
		specification.OrderBy{Field: "meal_date"},
		specification.Pagination{Limit: dashboardLimit},
	)
	if err != nil {
		return nil, err
	}
	res.UpcomingMeals = mapper.MealsToResponse(upcoming)

	payments, err := uow.PaymentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: principal.UserId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: dashboardLimit},
	)
	if err != nil {
		return nil, err
	}
	res.RecentPayments = make([]*dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		res.RecentPayments = append(res.RecentPayments, mapper.PaymentToResponse(p))
	}
	return res, nil
}

func (s *mealService) currentSubscription(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Subscription, error) {
	return uow.SubscriptionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ActiveSubscriptionAt{Now: s.engine.Now().UTC()},
		specification.OrderBy{Field: "end_date", Desc: true},
	)
}

// parseDay reads a YYYY-MM-DD calendar day in the booking location.
func (s *mealService) parseDay(value, field string) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, value, s.engine.Location())
	if err != nil {
		return time.Time{}, apperror.WithMessage(apperror.ErrInvalidInput, field+" must be YYYY-MM-DD")
	}
	return day, nil
}
