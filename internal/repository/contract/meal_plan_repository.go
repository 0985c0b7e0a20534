package contract

import (
	"context"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/repository/specification"
)

type MealPlanRepository interface {
	Create(ctx context.Context, plan *entity.MealPlan) error
	Update(ctx context.Context, plan *entity.MealPlan) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MealPlan, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MealPlan, error)
}
