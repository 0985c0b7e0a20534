package events

import (
	"context"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/logger"
	pkgEvents "meal-ordering-be/pkg/events"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for admin operations
type Publisher interface {
	PublishRefundApproved(ctx context.Context, refund *entity.RefundRequest, payment *entity.Payment)
	PublishRefundRejected(ctx context.Context, refund *entity.RefundRequest)
	PublishUserUpdated(ctx context.Context, user *entity.User, adminId uuid.UUID)
	PublishPlanCreated(ctx context.Context, plan *entity.MealPlan)
	PublishPlanDeactivated(ctx context.Context, plan *entity.MealPlan)
	PublishSubscriptionCancelled(ctx context.Context, sub *entity.Subscription, adminId uuid.UUID)
}

// BusPublisher implements Publisher on top of the lifecycle event bus
type BusPublisher struct {
	publisher pkgEvents.Publisher
	logger    logger.ILogger
}

func NewBusPublisher(publisher pkgEvents.Publisher, logger logger.ILogger) *BusPublisher {
	return &BusPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *BusPublisher) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("ADMIN", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishRefundApproved emits REFUND_APPROVED event
func (p *BusPublisher) PublishRefundApproved(ctx context.Context, refund *entity.RefundRequest, payment *entity.Payment) {
	data := map[string]interface{}{
		"refund_id":   refund.Id.String(),
		"payment_id":  refund.PaymentId.String(),
		"user_id":     refund.UserId.String(),
		"reason":      refund.Reason,
		"entity_type": "refund",
		"entity_id":   refund.Id.String(),
	}
	if payment != nil {
		data["amount"] = payment.Amount.StringFixed(2)
	}
	if refund.ProcessedBy != nil {
		data["processed_by"] = refund.ProcessedBy.String()
	}
	p.emit(ctx, pkgEvents.RefundApproved, data)
}

// PublishRefundRejected emits REFUND_REJECTED event
func (p *BusPublisher) PublishRefundRejected(ctx context.Context, refund *entity.RefundRequest) {
	data := map[string]interface{}{
		"refund_id":   refund.Id.String(),
		"payment_id":  refund.PaymentId.String(),
		"user_id":     refund.UserId.String(),
		"reason":      refund.Reason,
		"entity_type": "refund",
		"entity_id":   refund.Id.String(),
	}
	if refund.ProcessedBy != nil {
		data["processed_by"] = refund.ProcessedBy.String()
	}
	p.emit(ctx, pkgEvents.RefundRejected, data)
}

// PublishUserUpdated emits USER_UPDATED event
func (p *BusPublisher) PublishUserUpdated(ctx context.Context, user *entity.User, adminId uuid.UUID) {
	p.emit(ctx, pkgEvents.UserUpdated, map[string]interface{}{
		"user_id":     user.Id.String(),
		"email":       user.Email,
		"role":        string(user.Role),
		"is_active":   user.IsActive,
		"updated_by":  adminId.String(),
		"entity_type": "user",
		"entity_id":   user.Id.String(),
	})
}

// PublishPlanCreated emits PLAN_CREATED event
func (p *BusPublisher) PublishPlanCreated(ctx context.Context, plan *entity.MealPlan) {
	p.emit(ctx, pkgEvents.PlanCreated, map[string]interface{}{
		"plan_id":     plan.Id.String(),
		"name":        plan.Name,
		"price":       plan.Price.StringFixed(2),
		"entity_type": "meal_plan",
		"entity_id":   plan.Id.String(),
	})
}

// PublishPlanDeactivated emits PLAN_DEACTIVATED event
func (p *BusPublisher) PublishPlanDeactivated(ctx context.Context, plan *entity.MealPlan) {
	p.emit(ctx, pkgEvents.PlanDeactivated, map[string]interface{}{
		"plan_id":     plan.Id.String(),
		"name":        plan.Name,
		"entity_type": "meal_plan",
		"entity_id":   plan.Id.String(),
	})
}

// PublishSubscriptionCancelled emits SUBSCRIPTION_CANCELLED event for admin cancellations
func (p *BusPublisher) PublishSubscriptionCancelled(ctx context.Context, sub *entity.Subscription, adminId uuid.UUID) {
	p.emit(ctx, pkgEvents.SubscriptionCancelled, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         sub.UserId.String(),
		"cancelled_by":    "admin",
		"admin_id":        adminId.String(),
		"entity_type":     "subscription",
		"entity_id":       sub.Id.String(),
	})
}
