package contract

import (
	"context"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/repository/specification"
)

type MealRepository interface {
	Create(ctx context.Context, meal *entity.Meal) error
	CreateBatch(ctx context.Context, meals []*entity.Meal) error
	Update(ctx context.Context, meal *entity.Meal) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Meal, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Meal, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Stats
	CountByCategory(ctx context.Context, specs ...specification.Specification) ([]entity.CategoryCount, error)
	ListMealDates(ctx context.Context, specs ...specification.Specification) ([]time.Time, error)
}
