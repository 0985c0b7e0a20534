package contract

import (
	"context"

	"meal-ordering-be/internal/entity"
)

type WebhookEventRepository interface {
	Exists(ctx context.Context, eventId string) (bool, error)
	MarkProcessed(ctx context.Context, event *entity.WebhookEvent) error
}
