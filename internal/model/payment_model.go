package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Payment struct {
	Id                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserId              uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount              decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentType         string          `gorm:"type:varchar(20);not null"`
	Status              string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	ProcessorPaymentRef string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	ProcessorRefundRef  *string         `gorm:"type:varchar(100);uniqueIndex"`
	CheckoutURL         string          `gorm:"type:text"`
	SubscriptionId      *uuid.UUID      `gorm:"type:uuid;index"`
	MealId              *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt           time.Time       `gorm:"autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime"`

	User         User          `gorm:"foreignKey:UserId"`
	Subscription *Subscription `gorm:"foreignKey:SubscriptionId"`
	Meal         *Meal         `gorm:"foreignKey:MealId"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	ensureId(&p.Id)
	return nil
}
