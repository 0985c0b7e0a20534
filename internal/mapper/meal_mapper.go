package mapper

import (
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"
)

type MealMapper struct{}

func NewMealMapper() *MealMapper {
	return &MealMapper{}
}

func (m *MealMapper) ToEntity(meal *model.Meal) *entity.Meal {
	if meal == nil {
		return nil
	}
	return &entity.Meal{
		Id:                 meal.Id,
		UserId:             meal.UserId,
		MealType:           entity.MealCategory(meal.MealType),
		MealDate:           meal.MealDate,
		Status:             entity.MealStatus(meal.Status),
		PaymentStatus:      entity.MealPaymentStatus(meal.PaymentStatus),
		DietaryPreferences: meal.DietaryPreferences,
		SubscriptionId:     meal.SubscriptionId,
		CreatedAt:          meal.CreatedAt,
		UpdatedAt:          meal.UpdatedAt,
	}
}

func (m *MealMapper) ToModel(meal *entity.Meal) *model.Meal {
	if meal == nil {
		return nil
	}
	return &model.Meal{
		Id:                 meal.Id,
		UserId:             meal.UserId,
		MealType:           string(meal.MealType),
		MealDate:           meal.MealDate,
		Status:             string(meal.Status),
		PaymentStatus:      string(meal.PaymentStatus),
		DietaryPreferences: meal.DietaryPreferences,
		SubscriptionId:     meal.SubscriptionId,
		CreatedAt:          meal.CreatedAt,
		UpdatedAt:          meal.UpdatedAt,
	}
}

func (m *MealMapper) ToEntities(models []*model.Meal) []*entity.Meal {
	entities := make([]*entity.Meal, len(models))
	for i, meal := range models {
		entities[i] = m.ToEntity(meal)
	}
	return entities
}
