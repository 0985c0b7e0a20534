package implementation

import (
	"context"
	"errors"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/mapper"
	"meal-ordering-be/internal/model"
	"meal-ordering-be/internal/repository/contract"
	"meal-ordering-be/internal/repository/specification"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, payment *entity.Payment) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error; err != nil {
		return err
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error) {
	var m model.Payment
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaymentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error) {
	var models []*model.Payment
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Payment, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PaymentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Payment{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PaymentRepositoryImpl) SumRevenue(ctx context.Context) (*entity.RevenueSummary, error) {
	// Amounts are summed in Go so decimal precision survives every driver.
	var rows []struct {
		PaymentType string
		Amount      decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Select("payment_type, amount").
		Where("status = ?", string(entity.PaymentStatusCompleted)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &entity.RevenueSummary{
		Total:        decimal.Zero,
		Subscription: decimal.Zero,
		OneTime:      decimal.Zero,
	}
	for _, row := range rows {
		summary.Total = summary.Total.Add(row.Amount)
		switch entity.PaymentType(row.PaymentType) {
		case entity.PaymentTypeSubscription:
			summary.Subscription = summary.Subscription.Add(row.Amount)
		case entity.PaymentTypeOneTime:
			summary.OneTime = summary.OneTime.Add(row.Amount)
		}
	}
	return summary, nil
}
