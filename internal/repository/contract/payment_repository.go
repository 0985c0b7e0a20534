package contract

import (
	"context"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/repository/specification"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SumRevenue totals completed payments, split by payment type.
	SumRevenue(ctx context.Context) (*entity.RevenueSummary, error)
}
