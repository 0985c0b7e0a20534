package implementation

import (
	"context"
	"errors"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/mapper"
	"meal-ordering-be/internal/model"
	"meal-ordering-be/internal/repository/contract"
	"meal-ordering-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type refundRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RefundMapper
}

func NewRefundRepository(db *gorm.DB) contract.RefundRepository {
	return &refundRepositoryImpl{db: db, mapper: mapper.NewRefundMapper()}
}

func (r *refundRepositoryImpl) Create(ctx context.Context, refund *entity.RefundRequest) error {
	m := r.mapper.ToModel(refund)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	*refund = *r.mapper.ToEntity(m)
	return nil
}

func (r *refundRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundRequest, error) {
	var m model.RefundRequest
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *refundRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundRequest, error) {
	var models []*model.RefundRequest
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	refunds := make([]*entity.RefundRequest, 0, len(models))
	for _, m := range models {
		refunds = append(refunds, r.mapper.ToEntity(m))
	}
	return refunds, nil
}

// FindAllWithDetails returns refund requests with preloaded User and Payment relations
func (r *refundRepositoryImpl) FindAllWithDetails(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundRequest, error) {
	var models []*model.RefundRequest
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Payment")
	query = applySpecifications(query, specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	refunds := make([]*entity.RefundRequest, 0, len(models))
	for _, m := range models {
		refunds = append(refunds, r.mapper.ToEntityWithDetails(m))
	}
	return refunds, nil
}

func (r *refundRepositoryImpl) Update(ctx context.Context, refund *entity.RefundRequest) error {
	return r.db.WithContext(ctx).Model(&model.RefundRequest{}).
		Where("id = ?", refund.Id).
		Updates(map[string]interface{}{
			"reason":       refund.Reason,
			"status":       string(refund.Status),
			"processed_at": refund.ProcessedAt,
			"processed_by": refund.ProcessedBy,
		}).Error
}

func (r *refundRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.RefundRequest{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
