package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MealPlan struct {
	Id            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name          string          `gorm:"type:varchar(100);not null"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DurationDays  int             `gorm:"not null"`
	MealsIncluded int             `gorm:"not null"`
	IsActive      bool            `gorm:"default:true;index"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
}

func (MealPlan) TableName() string {
	return "meal_plans"
}

func (p *MealPlan) BeforeCreate(tx *gorm.DB) error {
	ensureId(&p.Id)
	return nil
}
