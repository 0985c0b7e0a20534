// FILE: internal/entity/user_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleStaff   UserRole = "staff"
	UserRoleAdmin   UserRole = "admin"
)

type User struct {
	Id            uuid.UUID
	Username      string
	Email         string
	PasswordHash  *string
	FullName      string
	Role          UserRole
	IsActive      bool
	EmailVerified bool
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// Principal is the authenticated caller of a lifecycle operation.
// It is resolved by the transport layer and passed explicitly into every call.
type Principal struct {
	UserId uuid.UUID
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) Owns(userId uuid.UUID) bool {
	return p.UserId == userId
}
