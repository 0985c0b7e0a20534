package service

import (
	"context"
	"time"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/mapper"
	"meal-ordering-be/internal/pkg/apperror"
	"meal-ordering-be/internal/pkg/logger"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/admin/dashboard"
	adminMapper "meal-ordering-be/pkg/admin/mapper"
	"meal-ordering-be/pkg/admin/refund"
	"meal-ordering-be/pkg/admin/subscription"
	"meal-ordering-be/pkg/admin/user"

	"github.com/google/uuid"
)

type IAdminService interface {
	GetDashboardStats(ctx context.Context, admin entity.Principal) (*dto.AdminDashboardStats, error)
	Export(ctx context.Context, admin entity.Principal, kind string) (interface{}, error)

	// User Management
	GetAllUsers(ctx context.Context, admin entity.Principal, query dto.AdminUserListQuery) (*dto.PageResponse[*dto.AdminUserResponse], error)
	UpdateUser(ctx context.Context, admin entity.Principal, userId uuid.UUID, req dto.AdminUpdateUserRequest) (*dto.AdminUserResponse, error)

	// Refund Management
	GetRefunds(ctx context.Context, admin entity.Principal, query dto.PageQuery) (*dto.PageResponse[*dto.AdminRefundListResponse], error)
	ApproveRefund(ctx context.Context, admin entity.Principal, refundId uuid.UUID) (*dto.AdminRefundDecisionResponse, error)
	RejectRefund(ctx context.Context, admin entity.Principal, refundId uuid.UUID) (*dto.AdminRefundDecisionResponse, error)

	// Subscription Management
	GetSubscriptions(ctx context.Context, admin entity.Principal, query dto.PageQuery) (*dto.PageResponse[*dto.AdminSubscriptionResponse], error)
	CancelSubscription(ctx context.Context, admin entity.Principal, subscriptionId uuid.UUID) (*dto.AdminSubscriptionResponse, error)

	// Logs
	GetSystemLogs(ctx context.Context, admin entity.Principal, query dto.PageQuery) ([]*dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, admin entity.Principal, logId string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger

	// Domain Components
	userManager         *user.Manager
	subscriptionManager *subscription.Manager
	refundProcessor     *refund.Processor
	dashboardAggregator *dashboard.Aggregator
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
	userManager *user.Manager,
	subscriptionManager *subscription.Manager,
	refundProcessor *refund.Processor,
	dashboardAggregator *dashboard.Aggregator,
) IAdminService {
	return &adminService{
		uowFactory:          uowFactory,
		logger:              logger,
		userManager:         userManager,
		subscriptionManager: subscriptionManager,
		refundProcessor:     refundProcessor,
		dashboardAggregator: dashboardAggregator,
	}
}

// requireAdmin re-checks the role even though routes are already gated.
func requireAdmin(admin entity.Principal) error {
	if !admin.IsAdmin() {
		return apperror.ErrAdminOnly
	}
	return nil
}

func pageBounds(page, limit, fallback int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = fallback
	}
	return page, limit
}

func (s *adminService) GetDashboardStats(ctx context.Context, admin entity.Principal) (*dto.AdminDashboardStats, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.dashboardAggregator.GetStats(ctx, s.uowFactory.NewUnitOfWork(ctx))
}

func (s *adminService) Export(ctx context.Context, admin entity.Principal, kind string) (interface{}, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.dashboardAggregator.Export(ctx, s.uowFactory.NewUnitOfWork(ctx), kind)
}

// --- User Management ---

func (s *adminService) GetAllUsers(ctx context.Context, admin entity.Principal, query dto.AdminUserListQuery) (*dto.PageResponse[*dto.AdminUserResponse], error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	page, limit := pageBounds(query.Page, query.Limit, user.DefaultPageSize)

	users, total, err := s.userManager.FindAll(ctx, s.uowFactory.NewUnitOfWork(ctx), page, limit, query.Search)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AdminUserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, mapper.UserToAdminResponse(u))
	}
	return &dto.PageResponse[*dto.AdminUserResponse]{Items: items, Page: page, Limit: limit, Total: total}, nil
}

func (s *adminService) UpdateUser(ctx context.Context, admin entity.Principal, userId uuid.UUID, req dto.AdminUpdateUserRequest) (*dto.AdminUserResponse, error) {
	updated, err := s.userManager.Update(ctx, s.uowFactory.NewUnitOfWork(ctx), admin, userId, req)
	if err != nil {
		return nil, err
	}
	return mapper.UserToAdminResponse(updated), nil
}

// --- Refund Management ---

func (s *adminService) GetRefunds(ctx context.Context, admin entity.Principal, query dto.PageQuery) (*dto.PageResponse[*dto.AdminRefundListResponse], error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	page, limit := pageBounds(query.Page, query.Limit, 10)

	refunds, total, err := s.refundProcessor.GetAll(ctx, s.uowFactory.NewUnitOfWork(ctx), page, limit, query.Status)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AdminRefundListResponse, 0, len(refunds))
	for _, r := range refunds {
		items = append(items, mapper.RefundToListResponse(r))
	}
	return &dto.PageResponse[*dto.AdminRefundListResponse]{Items: items, Page: page, Limit: limit, Total: total}, nil
}

func (s *adminService) ApproveRefund(ctx context.Context, admin entity.Principal, refundId uuid.UUID) (*dto.AdminRefundDecisionResponse, error) {
	result, err := s.refundProcessor.Approve(ctx, s.uowFactory.NewUnitOfWork(ctx), admin, refundId)
	if err != nil {
		return nil, err
	}
	return decisionToResponse(result), nil
}

func (s *adminService) RejectRefund(ctx context.Context, admin entity.Principal, refundId uuid.UUID) (*dto.AdminRefundDecisionResponse, error) {
	result, err := s.refundProcessor.Reject(ctx, s.uowFactory.NewUnitOfWork(ctx), admin, refundId)
	if err != nil {
		return nil, err
	}
	return decisionToResponse(result), nil
}

func decisionToResponse(result *refund.DecisionResult) *dto.AdminRefundDecisionResponse {
	res := &dto.AdminRefundDecisionResponse{
		RefundId: result.Refund.Id.String(),
		Status:   string(result.Refund.Status),
	}
	if result.Refund.ProcessedAt != nil {
		res.ProcessedAt = *result.Refund.ProcessedAt
	}
	if result.Payment != nil {
		res.PaymentStatus = string(result.Payment.Status)
	}
	return res
}

// --- Subscription Management ---

func (s *adminService) GetSubscriptions(ctx context.Context, admin entity.Principal, query dto.PageQuery) (*dto.PageResponse[*dto.AdminSubscriptionResponse], error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	page, limit := pageBounds(query.Page, query.Limit, 20)

	subs, total, err := s.subscriptionManager.FindAll(ctx, s.uowFactory.NewUnitOfWork(ctx), page, limit, query.Status)
	if err != nil {
		return nil, err
	}
	return &dto.PageResponse[*dto.AdminSubscriptionResponse]{
		Items: adminMapper.SubscriptionsToAdminResponse(subs, s.subscriptionManager.Now()),
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func (s *adminService) CancelSubscription(ctx context.Context, admin entity.Principal, subscriptionId uuid.UUID) (*dto.AdminSubscriptionResponse, error) {
	sub, err := s.subscriptionManager.Cancel(ctx, s.uowFactory.NewUnitOfWork(ctx), admin, subscriptionId)
	if err != nil {
		return nil, err
	}
	return adminMapper.SubscriptionToAdminResponse(sub, s.subscriptionManager.Now()), nil
}

// --- Logs ---

func (s *adminService) GetSystemLogs(ctx context.Context, admin entity.Principal, query dto.PageQuery) ([]*dto.LogListResponse, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	entries, err := s.dashboardAggregator.GetLogs(query.Level, query.Page, query.Limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.LogListResponse, 0, len(entries))
	for i := range entries {
		res = append(res, logToListResponse(&entries[i]))
	}
	return res, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, admin entity.Principal, logId string) (*dto.LogDetailResponse, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	entry, err := s.dashboardAggregator.GetLog(logId)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperror.ErrLogNotFound
	}
	return &dto.LogDetailResponse{
		LogListResponse: *logToListResponse(entry),
		Details:         entry.Details,
	}, nil
}

// logTimeLayout matches zap's ISO8601 time encoder.
const logTimeLayout = "2006-01-02T15:04:05.000Z0700"

func logToListResponse(e *logger.LogEntry) *dto.LogListResponse {
	createdAt, _ := time.Parse(logTimeLayout, e.Timestamp)
	return &dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		CreatedAt: createdAt,
	}
}
