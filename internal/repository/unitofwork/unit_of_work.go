package unitofwork

import (
	"context"

	"meal-ordering-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	MealPlanRepository() contract.MealPlanRepository
	SubscriptionRepository() contract.SubscriptionRepository
	MealRepository() contract.MealRepository
	PaymentRepository() contract.PaymentRepository
	RefundRepository() contract.RefundRepository
	WebhookEventRepository() contract.WebhookEventRepository
}
