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
)

type MealPlanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MealPlanMapper
}

func NewMealPlanRepository(db *gorm.DB) contract.MealPlanRepository {
	return &MealPlanRepositoryImpl{
		db:     db,
		mapper: mapper.NewMealPlanMapper(),
	}
}

func (r *MealPlanRepositoryImpl) Create(ctx context.Context, plan *entity.MealPlan) error {
	m := r.mapper.ToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.ToEntity(m)
	return nil
}

func (r *MealPlanRepositoryImpl) Update(ctx context.Context, plan *entity.MealPlan) error {
	m := r.mapper.ToModel(plan)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.ToEntity(m)
	return nil
}

func (r *MealPlanRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MealPlan, error) {
	var m model.MealPlan
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MealPlanRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MealPlan, error) {
	var models []*model.MealPlan
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.MealPlan, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
