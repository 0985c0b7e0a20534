package contract

import (
	"context"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/repository/specification"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.RefundRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundRequest, error)
	FindAllWithDetails(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundRequest, error)
	Update(ctx context.Context, refund *entity.RefundRequest) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
