package mapper

import (
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"
)

type MealPlanMapper struct{}

func NewMealPlanMapper() *MealPlanMapper {
	return &MealPlanMapper{}
}

func (m *MealPlanMapper) ToEntity(p *model.MealPlan) *entity.MealPlan {
	if p == nil {
		return nil
	}
	return &entity.MealPlan{
		Id:            p.Id,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DurationDays:  p.DurationDays,
		MealsIncluded: p.MealsIncluded,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (m *MealPlanMapper) ToModel(p *entity.MealPlan) *model.MealPlan {
	if p == nil {
		return nil
	}
	return &model.MealPlan{
		Id:            p.Id,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DurationDays:  p.DurationDays,
		MealsIncluded: p.MealsIncluded,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
