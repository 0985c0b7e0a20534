package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundRequest struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentId   uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	Reason      string    `gorm:"type:text;not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index"` // pending, approved, rejected
	ProcessedAt *time.Time
	ProcessedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`

	// Relations
	Payment   Payment `gorm:"foreignKey:PaymentId"`
	User      User    `gorm:"foreignKey:UserId"`
	Processor *User   `gorm:"foreignKey:ProcessedBy"`
}

func (RefundRequest) TableName() string {
	return "refund_requests"
}

func (r *RefundRequest) BeforeCreate(tx *gorm.DB) error {
	ensureId(&r.Id)
	return nil
}
