package mapper

import (
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:              s.Id,
		UserId:          s.UserId,
		PlanType:        entity.PlanCategory(s.PlanType),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		Status:          entity.SubscriptionStatus(s.Status),
		ProcessorSubRef: s.ProcessorSubRef,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:              s.Id,
		UserId:          s.UserId,
		PlanType:        string(s.PlanType),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		Status:          string(s.Status),
		ProcessorSubRef: s.ProcessorSubRef,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
