package entity

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent records a processor notification that has been applied.
type WebhookEvent struct {
	Id          uuid.UUID
	EventId     string
	EventType   string
	Reference   string
	Payload     []byte
	ProcessedAt time.Time
}
