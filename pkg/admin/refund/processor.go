package refund

import (
	"context"
	"time"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/locker"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/specification"
	"meal-ordering-be/internal/repository/unitofwork"
	adminEvents "meal-ordering-be/pkg/admin/events"

	"github.com/google/uuid"
)

// Refunder moves the money back through the payment processor.
type Refunder interface {
	RequestRefund(ctx context.Context, uow unitofwork.UnitOfWork, paymentId uuid.UUID, reason string) (*entity.Payment, error)
}

// DecisionResult contains the outcome of an approve or reject decision
type DecisionResult struct {
	Refund  *entity.RefundRequest
	Payment *entity.Payment
}

// Processor handles refund approval/rejection workflow
type Processor struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher
	refunder  Refunder
	locker    locker.Locker
	now       func() time.Time
}

// NewProcessor creates a new refund processor
func NewProcessor(logger logger.ILogger, publisher adminEvents.Publisher, refunder Refunder, l locker.Locker, now func() time.Time) *Processor {
	if now == nil {
		now = time.Now
	}
	return &Processor{
		logger:    logger,
		publisher: publisher,
		refunder:  refunder,
		locker:    l,
		now:       now,
	}
}

// GetAll retrieves paginated refund requests with optional status filter
func (p *Processor) GetAll(ctx context.Context, uow unitofwork.UnitOfWork, page, limit int, status string) ([]*entity.RefundRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var filters []specification.Specification
	if status != "" {
		switch entity.RefundStatus(status) {
		case entity.RefundStatusPending, entity.RefundStatusApproved, entity.RefundStatusRejected:
		default:
			return nil, 0, apperror.WithMessage(apperror.ErrInvalidInput, "status must be pending, approved or rejected")
		}
		filters = append(filters, specification.ByStatus{Status: status})
	}

	total, err := uow.RefundRepository().Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	refunds, err := uow.RefundRepository().FindAllWithDetails(ctx, specs...)
	if err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

// Approve refunds the payment and resolves the request. A processor failure keeps
// the request pending so it can be approved again.
func (p *Processor) Approve(ctx context.Context, uow unitofwork.UnitOfWork, admin entity.Principal, refundId uuid.UUID) (*DecisionResult, error) {
	return p.ProcessDecision(ctx, uow, admin, refundId, entity.RefundDecisionApprove)
}

// Reject resolves the request without moving money
func (p *Processor) Reject(ctx context.Context, uow unitofwork.UnitOfWork, admin entity.Principal, refundId uuid.UUID) (*DecisionResult, error) {
	return p.ProcessDecision(ctx, uow, admin, refundId, entity.RefundDecisionReject)
}

func (p *Processor) ProcessDecision(ctx context.Context, uow unitofwork.UnitOfWork, admin entity.Principal, refundId uuid.UUID, decision entity.RefundDecision) (*DecisionResult, error) {
	if !admin.IsAdmin() {
		return nil, apperror.ErrAdminOnly
	}
	if decision != entity.RefundDecisionApprove && decision != entity.RefundDecisionReject {
		return nil, apperror.WithMessage(apperror.ErrInvalidInput, "decision must be approve or reject")
	}

	lockCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	release, err := p.locker.Lock(lockCtx, locker.RefundKey(refundId.String()))
	cancel()
	if err != nil {
		return nil, err
	}
	defer release()

	// 1. Find the refund
	refund, err := uow.RefundRepository().FindOne(ctx, specification.ByID{ID: refundId})
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperror.ErrRefundNotFound
	}

	// 2. Check if already processed
	if refund.IsResolved() {
		return nil, apperror.ErrAlreadyProcessed
	}

	// 3. Move the money before recording the decision
	var payment *entity.Payment
	if decision == entity.RefundDecisionApprove {
		payment, err = p.refunder.RequestRefund(ctx, uow, refund.PaymentId, refund.Reason)
		if err != nil {
			p.logger.Error("ADMIN", "Refund approval failed at processor", map[string]interface{}{
				"refundId":  refundId.String(),
				"paymentId": refund.PaymentId.String(),
				"error":     err.Error(),
			})
			return nil, err
		}
	}

	// 4. Record the decision
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	refund, err = uow.RefundRepository().FindOne(ctx, specification.ByID{ID: refundId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperror.ErrRefundNotFound
	}
	if refund.IsResolved() {
		return nil, apperror.ErrAlreadyProcessed
	}

	now := p.now()
	adminId := admin.UserId
	refund.Status = entity.RefundStatusRejected
	if decision == entity.RefundDecisionApprove {
		refund.Status = entity.RefundStatusApproved
	}
	refund.ProcessedAt = &now
	refund.ProcessedBy = &adminId

	if err := uow.RefundRepository().Update(ctx, refund); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// 5. Log the action
	p.logger.Info("ADMIN", "Processed Refund Request", map[string]interface{}{
		"refundId":  refundId.String(),
		"paymentId": refund.PaymentId.String(),
		"decision":  string(decision),
		"adminId":   adminId.String(),
	})

	// 6. Emit event
	if decision == entity.RefundDecisionApprove {
		p.publisher.PublishRefundApproved(ctx, refund, payment)
	} else {
		p.publisher.PublishRefundRejected(ctx, refund)
	}

	return &DecisionResult{Refund: refund, Payment: payment}, nil
}
