package plan

import (
	"context"
	"strings"
	"time"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	adminEvents "meal-ordering-be/pkg/admin/events"

	"github.com/google/uuid"
)

// Manager handles meal plan catalog operations
type Manager struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher
	now       func() time.Time
}

// NewManager creates a new plan manager
func NewManager(logger logger.ILogger, publisher adminEvents.Publisher, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		logger:    logger,
		publisher: publisher,
		now:       now,
	}
}

// FindActive lists the plans a user may purchase.
func (m *Manager) FindActive(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.MealPlan, error) {
	return uow.MealPlanRepository().FindAll(ctx,
		specification.Filter("is_active", true),
		specification.OrderBy{Field: "price"},
	)
}

// FindAll lists every plan, newest first.
func (m *Manager) FindAll(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.MealPlan, error) {
	return uow.MealPlanRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
}

func (m *Manager) FindOne(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.MealPlan, error) {
	plan, err := uow.MealPlanRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperror.ErrPlanNotFound
	}
	return plan, nil
}

// Create adds an active plan to the catalog.
func (m *Manager) Create(ctx context.Context, uow unitofwork.UnitOfWork, admin entity.Principal, req dto.AdminCreatePlanRequest) (*entity.MealPlan, error) {
	if !admin.IsAdmin() {
		return nil, apperror.ErrAdminOnly
	}

	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, apperror.WithMessage(apperror.ErrInvalidInput, "name is required")
	case !req.Price.IsPositive():
		return nil, apperror.WithMessage(apperror.ErrInvalidInput, "price must be positive")
	case req.DurationDays <= 0:
		return nil, apperror.WithMessage(apperror.ErrInvalidInput, "duration_days must be positive")
	case req.MealsIncluded <= 0:
		return nil, apperror.WithMessage(apperror.ErrInvalidInput, "meals_included must be positive")
	}

	now := m.now().UTC()
	plan := &entity.MealPlan{
		Id:            uuid.New(),
		Name:          name,
		Description:   req.Description,
		Price:         req.Price,
		DurationDays:  req.DurationDays,
		MealsIncluded: req.MealsIncluded,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uow.MealPlanRepository().Create(ctx, plan); err != nil {
		return nil, err
	}

	m.logger.Info("CATALOG", "Meal plan created", map[string]interface{}{
		"plan_id":  plan.Id.String(),
		"name":     plan.Name,
		"price":    plan.Price.StringFixed(2),
		"admin_id": admin.UserId.String(),
	})
	m.publisher.PublishPlanCreated(ctx, plan)
	return plan, nil
}

// Deactivate hides a plan from the catalog. Existing subscriptions keep running.
// Deactivating an inactive plan is a no-op.
func (m *Manager) Deactivate(ctx context.Context, uow unitofwork.UnitOfWork, admin entity.Principal, id uuid.UUID) (*entity.MealPlan, error) {
	if !admin.IsAdmin() {
		return nil, apperror.ErrAdminOnly
	}

	plan, err := m.FindOne(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return plan, nil
	}

	plan.IsActive = false
	plan.UpdatedAt = m.now().UTC()
	if err := uow.MealPlanRepository().Update(ctx, plan); err != nil {
		return nil, err
	}

	m.logger.Info("CATALOG", "Meal plan deactivated", map[string]interface{}{
		"plan_id":  plan.Id.String(),
		"admin_id": admin.UserId.String(),
	})
	m.publisher.PublishPlanDeactivated(ctx, plan)
	return plan, nil
}
