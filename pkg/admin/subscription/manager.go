package subscription

import (
	"context"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	adminEvents "meal-ordering-be/pkg/admin/events"

	"github.com/google/uuid"
)

// Manager handles subscription-related admin operations
type Manager struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher
	now       func() time.Time
}

// NewManager creates a new subscription manager
func NewManager(logger logger.ILogger, publisher adminEvents.Publisher, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		logger:    logger,
		publisher: publisher,
		now:       now,
	}
}

// Now is the instant effective statuses are read at.
func (m *Manager) Now() time.Time {
	return m.now().UTC()
}

// FindAll lists subscriptions newest first. status filters on the effective status
// (active, expired, cancelled); empty means all.
func (m *Manager) FindAll(ctx context.Context, uow unitofwork.UnitOfWork, page, limit int, status string) ([]*entity.Subscription, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var filter []specification.Specification
	now := m.Now()
	switch entity.SubscriptionStatus(status) {
	case "":
	case entity.SubscriptionStatusActive:
		filter = append(filter, specification.ActiveSubscriptionAt{Now: now})
	case entity.SubscriptionStatusExpired:
		filter = append(filter, specification.LapsedSubscriptionAt{Now: now})
	case entity.SubscriptionStatusCancelled:
		filter = append(filter, specification.ByStatus{Status: status})
	default:
		return nil, 0, apperror.WithMessage(apperror.ErrInvalidInput, "status must be active, expired or cancelled")
	}

	total, err := uow.SubscriptionRepository().Count(ctx, filter...)
	if err != nil {
		return nil, 0, err
	}

	specs := append(filter,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	subs, err := uow.SubscriptionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// Cancel ends a usable subscription on the owner's behalf. Meals already
// generated from it are left as they are.
func (m *Manager) Cancel(ctx context.Context, uow unitofwork.UnitOfWork, admin entity.Principal, id uuid.UUID) (*entity.Subscription, error) {
	if !admin.IsAdmin() {
		return nil, apperror.ErrAdminOnly
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// 1. Find the subscription
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: id}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.ErrSubscriptionNotFound
	}

	// 2. Only a usable subscription can be cancelled
	if !sub.IsUsable(m.Now()) {
		return nil, apperror.ErrSubscriptionInactive
	}

	// 3. Mark cancelled
	sub.Status = entity.SubscriptionStatusCancelled
	sub.UpdatedAt = m.Now()
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.logger.Info("ADMIN", "Subscription cancelled by admin", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         sub.UserId.String(),
		"admin_id":        admin.UserId.String(),
	})
	m.publisher.PublishSubscriptionCancelled(ctx, sub, admin.UserId)
	return sub, nil
}
