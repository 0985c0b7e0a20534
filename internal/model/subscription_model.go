package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subscription struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId          uuid.UUID `gorm:"type:uuid;not null;index:idx_subscriptions_user_status,priority:1"`
	PlanType        string    `gorm:"type:varchar(20);not null"`
	StartDate       time.Time `gorm:"not null"`
	EndDate         time.Time `gorm:"not null"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active';index:idx_subscriptions_user_status,priority:2"`
	ProcessorSubRef *string   `gorm:"type:varchar(100);uniqueIndex"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`

	User User `gorm:"foreignKey:UserId"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	ensureId(&s.Id)
	return nil
}
