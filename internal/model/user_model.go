package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username      string    `gorm:"type:varchar(80);uniqueIndex;not null"`
	Email         string    `gorm:"type:varchar(120);uniqueIndex;not null"`
	PasswordHash  *string   `gorm:"type:varchar(255)"`
	FullName      string    `gorm:"type:varchar(255)"`
	Role          string    `gorm:"type:varchar(20);not null;default:'student'"`
	IsActive      bool      `gorm:"default:false"`
	EmailVerified bool      `gorm:"default:false"`
	LastLoginAt   *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureId(&u.Id)
	return nil
}
