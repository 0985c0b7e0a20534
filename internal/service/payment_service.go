package service

import (
	"context"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/mapper"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/payment"
	"meal-ordering-be/pkg/reconcile"

	"github.com/google/uuid"
)

type IPaymentService interface {
	BeginMealCheckout(ctx context.Context, principal entity.Principal, mealId uuid.UUID) (*dto.CheckoutResponse, error)
	BeginSubscriptionCheckout(ctx context.Context, principal entity.Principal, subscriptionId uuid.UUID, req dto.SubscriptionCheckoutRequest) (*dto.CheckoutResponse, error)
	ConfirmMealPayment(ctx context.Context, principal entity.Principal, mealId uuid.UUID) (*dto.MealResponse, error)
	HandleNotification(ctx context.Context, payload []byte) (*reconcile.NotificationResult, error)
	RequestRefund(ctx context.Context, principal entity.Principal, req dto.UserRefundRequest) (*dto.UserRefundResponse, error)
}

type paymentService struct {
	uowFactory unitofwork.RepositoryFactory
	reconciler *reconcile.Reconciler
}

func NewPaymentService(uowFactory unitofwork.RepositoryFactory, reconciler *reconcile.Reconciler) IPaymentService {
	return &paymentService{
		uowFactory: uowFactory,
		reconciler: reconciler,
	}
}

func (s *paymentService) BeginMealCheckout(ctx context.Context, principal entity.Principal, mealId uuid.UUID) (*dto.CheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	customer, err := s.customer(ctx, uow, principal.UserId)
	if err != nil {
		return nil, err
	}

	checkout, err := s.reconciler.BeginMealCheckout(ctx, uow, principal, customer, mealId)
	if err != nil {
		return nil, err
	}
	return checkoutToResponse(checkout), nil
}

func (s *paymentService) BeginSubscriptionCheckout(ctx context.Context, principal entity.Principal, subscriptionId uuid.UUID, req dto.SubscriptionCheckoutRequest) (*dto.CheckoutResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	customer, err := s.customer(ctx, uow, principal.UserId)
	if err != nil {
		return nil, err
	}

	checkout, err := s.reconciler.BeginSubscriptionCheckout(ctx, uow, principal, customer, subscriptionId, req.PlanId)
	if err != nil {
		return nil, err
	}
	return checkoutToResponse(checkout), nil
}

func (s *paymentService) ConfirmMealPayment(ctx context.Context, principal entity.Principal, mealId uuid.UUID) (*dto.MealResponse, error) {
	meal, err := s.reconciler.ConfirmPaymentSuccess(ctx, s.uowFactory.NewUnitOfWork(ctx), principal, mealId)
	if err != nil {
		return nil, err
	}
	return mapper.MealToResponse(meal), nil
}

func (s *paymentService) HandleNotification(ctx context.Context, payload []byte) (*reconcile.NotificationResult, error) {
	return s.reconciler.HandleNotification(ctx, s.uowFactory.NewUnitOfWork(ctx), payload)
}

func (s *paymentService) RequestRefund(ctx context.Context, principal entity.Principal, req dto.UserRefundRequest) (*dto.UserRefundResponse, error) {
	refund, err := s.reconciler.OpenRefundRequest(ctx, s.uowFactory.NewUnitOfWork(ctx), principal, req.PaymentId, req.Reason)
	if err != nil {
		return nil, err
	}
	return &dto.UserRefundResponse{
		RefundId: refund.Id.String(),
		Status:   string(refund.Status),
		Message:  "Refund request submitted and awaiting review",
	}, nil
}

func (s *paymentService) customer(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (payment.Customer, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return payment.Customer{}, err
	}
	if user == nil {
		return payment.Customer{}, apperror.ErrUserNotFound
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	return payment.Customer{Name: name, Email: user.Email}, nil
}

func checkoutToResponse(c *reconcile.Checkout) *dto.CheckoutResponse {
	return &dto.CheckoutResponse{
		PaymentId:   c.Payment.Id,
		Amount:      c.Payment.Amount,
		Token:       c.Token,
		RedirectUrl: c.RedirectURL,
		Reused:      c.Reused,
	}
}
