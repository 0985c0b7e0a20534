package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WebhookEvent struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EventId     string         `gorm:"type:varchar(150);uniqueIndex;not null"`
	EventType   string         `gorm:"type:varchar(80);not null"`
	Reference   string         `gorm:"type:varchar(100);index"`
	Payload     datatypes.JSON `json:"payload"`
	ProcessedAt time.Time      `gorm:"not null"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

func (w *WebhookEvent) BeforeCreate(tx *gorm.DB) error {
	ensureId(&w.Id)
	return nil
}
