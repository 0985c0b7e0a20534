package implementation

import (
	"context"

	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/model"
	"meal-ordering-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type webhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) contract.WebhookEventRepository {
	return &webhookEventRepositoryImpl{db: db}
}

func (r *webhookEventRepositoryImpl) Exists(ctx context.Context, eventId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventId).
		Count(&count).Error
	return count > 0, err
}

func (r *webhookEventRepositoryImpl) MarkProcessed(ctx context.Context, event *entity.WebhookEvent) error {
	m := &model.WebhookEvent{
		Id:          event.Id,
		EventId:     event.EventId,
		EventType:   event.EventType,
		Reference:   event.Reference,
		Payload:     datatypes.JSON(event.Payload),
		ProcessedAt: event.ProcessedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	event.Id = m.Id
	return nil
}
