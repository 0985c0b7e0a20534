package specification

import (
	"strings"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ActiveUsers struct{}

func (s ActiveUsers) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// UserSearch matches username or email, case-insensitively.
type UserSearch struct {
	Query string
}

func (s UserSearch) Apply(db *gorm.DB) *gorm.DB {
	q := strings.TrimSpace(s.Query)
	if q == "" {
		return db
	}
	pattern := "%" + strings.ToLower(q) + "%"
	return db.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
}
