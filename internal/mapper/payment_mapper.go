package mapper

import (
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ToEntity(p *model.Payment) *entity.Payment {
	if p == nil {
		return nil
	}
	return &entity.Payment{
		Id:                  p.Id,
		UserId:              p.UserId,
		Amount:              p.Amount,
		PaymentType:         entity.PaymentType(p.PaymentType),
		Status:              entity.PaymentStatus(p.Status),
		ProcessorPaymentRef: p.ProcessorPaymentRef,
		ProcessorRefundRef:  p.ProcessorRefundRef,
		CheckoutURL:         p.CheckoutURL,
		SubscriptionId:      p.SubscriptionId,
		MealId:              p.MealId,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func (m *PaymentMapper) ToModel(p *entity.Payment) *model.Payment {
	if p == nil {
		return nil
	}
	return &model.Payment{
		Id:                  p.Id,
		UserId:              p.UserId,
		Amount:              p.Amount,
		PaymentType:         string(p.PaymentType),
		Status:              string(p.Status),
		ProcessorPaymentRef: p.ProcessorPaymentRef,
		ProcessorRefundRef:  p.ProcessorRefundRef,
		CheckoutURL:         p.CheckoutURL,
		SubscriptionId:      p.SubscriptionId,
		MealId:              p.MealId,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
