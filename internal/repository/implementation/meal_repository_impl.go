package implementation

import (
	"context"
	"errors"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/mapper"
	"meal-ordering-be/internal/model"
	"meal-ordering-be/internal/repository/contract"
	"meal-ordering-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const mealBatchSize = 100

type MealRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MealMapper
}

func NewMealRepository(db *gorm.DB) contract.MealRepository {
	return &MealRepositoryImpl{
		db:     db,
		mapper: mapper.NewMealMapper(),
	}
}

func (r *MealRepositoryImpl) Create(ctx context.Context, meal *entity.Meal) error {
	m := r.mapper.ToModel(meal)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	*meal = *r.mapper.ToEntity(m)
	return nil
}

func (r *MealRepositoryImpl) CreateBatch(ctx context.Context, meals []*entity.Meal) error {
	if len(meals) == 0 {
		return nil
	}
	models := make([]*model.Meal, len(meals))
	for i, meal := range meals {
		models[i] = r.mapper.ToModel(meal)
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(models, mealBatchSize).Error; err != nil {
		return err
	}
	for i, m := range models {
		*meals[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *MealRepositoryImpl) Update(ctx context.Context, meal *entity.Meal) error {
	m := r.mapper.ToModel(meal)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error; err != nil {
		return err
	}
	*meal = *r.mapper.ToEntity(m)
	return nil
}

func (r *MealRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Meal, error) {
	var m model.Meal
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MealRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Meal, error) {
	var models []*model.Meal
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MealRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Meal{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MealRepositoryImpl) CountByCategory(ctx context.Context, specs ...specification.Specification) ([]entity.CategoryCount, error) {
	var rows []struct {
		MealType string
		Count    int64
	}
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Meal{}), specs...)
	err := query.Select("meal_type, COUNT(*) as count").
		Group("meal_type").
		Order("meal_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]entity.CategoryCount, len(rows))
	for i, row := range rows {
		result[i] = entity.CategoryCount{MealType: entity.MealCategory(row.MealType), Count: row.Count}
	}
	return result, nil
}

// ListMealDates returns only the scheduled times of matching meals, for bucketing by the caller.
func (r *MealRepositoryImpl) ListMealDates(ctx context.Context, specs ...specification.Specification) ([]time.Time, error) {
	var models []*model.Meal
	query := applySpecifications(r.db.WithContext(ctx).Select("id", "meal_date"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(models))
	for i, m := range models {
		dates[i] = m.MealDate
	}
	return dates, nil
}
