package mapper

import (
	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
)

func MealToResponse(m *entity.Meal) *dto.MealResponse {
	return &dto.MealResponse{
		Id:                 m.Id,
		MealType:           string(m.MealType),
		MealDate:           m.MealDate,
		Status:             string(m.Status),
		PaymentStatus:      string(m.PaymentStatus),
		DietaryPreferences: m.DietaryPreferences,
		SubscriptionId:     m.SubscriptionId,
		CreatedAt:          m.CreatedAt,
	}
}

func MealsToResponse(meals []*entity.Meal) []*dto.MealResponse {
	res := make([]*dto.MealResponse, 0, len(meals))
	for _, m := range meals {
		res = append(res, MealToResponse(m))
	}
	return res
}

func SubscriptionToResponse(s *entity.Subscription, status entity.SubscriptionStatus) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		Id:        s.Id,
		PlanType:  string(s.PlanType),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Status:    string(status),
	}
}

func PaymentToResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		Id:          p.Id,
		Amount:      p.Amount,
		PaymentType: string(p.PaymentType),
		Status:      string(p.Status),
		MealId:      p.MealId,
		CreatedAt:   p.CreatedAt,
	}
}

func PlanToResponse(p *entity.MealPlan) *dto.PlanResponse {
	return &dto.PlanResponse{
		Id:            p.Id,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DurationDays:  p.DurationDays,
		MealsIncluded: p.MealsIncluded,
		IsActive:      p.IsActive,
	}
}

func UserToAdminResponse(u *entity.User) *dto.AdminUserResponse {
	return &dto.AdminUserResponse{
		Id:          u.Id,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
