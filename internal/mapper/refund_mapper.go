package mapper

import (
	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"
)

type RefundMapper struct {
	paymentMapper *PaymentMapper
	userMapper    *UserMapper
}

func NewRefundMapper() *RefundMapper {
	return &RefundMapper{
		paymentMapper: NewPaymentMapper(),
		userMapper:    NewUserMapper(),
	}
}

func (m *RefundMapper) ToEntity(r *model.RefundRequest) *entity.RefundRequest {
	if r == nil {
		return nil
	}
	return &entity.RefundRequest{
		Id:          r.Id,
		PaymentId:   r.PaymentId,
		UserId:      r.UserId,
		Reason:      r.Reason,
		Status:      entity.RefundStatus(r.Status),
		ProcessedAt: r.ProcessedAt,
		ProcessedBy: r.ProcessedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ToEntityWithDetails also maps preloaded Payment and User relations.
func (m *RefundMapper) ToEntityWithDetails(r *model.RefundRequest) *entity.RefundRequest {
	e := m.ToEntity(r)
	if e == nil {
		return nil
	}
	e.Payment = m.paymentMapper.ToEntity(&r.Payment)
	e.User = m.userMapper.ToEntity(&r.User)
	return e
}

func (m *RefundMapper) ToModel(r *entity.RefundRequest) *model.RefundRequest {
	if r == nil {
		return nil
	}
	return &model.RefundRequest{
		Id:          r.Id,
		PaymentId:   r.PaymentId,
		UserId:      r.UserId,
		Reason:      r.Reason,
		Status:      string(r.Status),
		ProcessedAt: r.ProcessedAt,
		ProcessedBy: r.ProcessedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func RefundToListResponse(r *entity.RefundRequest) *dto.AdminRefundListResponse {
	res := &dto.AdminRefundListResponse{
		Id:          r.Id,
		PaymentId:   r.PaymentId,
		Reason:      r.Reason,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		ProcessedAt: r.ProcessedAt,
		ProcessedBy: r.ProcessedBy,
	}
	if r.User != nil {
		res.User = dto.AdminRefundUserInfo{
			Id:       r.User.Id,
			Email:    r.User.Email,
			Username: r.User.Username,
		}
	}
	if r.Payment != nil {
		res.Payment = dto.AdminRefundPaymentInfo{
			Id:          r.Payment.Id,
			Amount:      r.Payment.Amount,
			PaymentType: string(r.Payment.PaymentType),
			Status:      string(r.Payment.Status),
			PaidAt:      r.Payment.CreatedAt,
		}
	}
	return res
}
