// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type PlanCategory string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	PlanCategoryWeekly  PlanCategory = "weekly"
	PlanCategoryMonthly PlanCategory = "monthly"
)

// DurationDays maps a plan category to its length. Anything but monthly is weekly.
func (c PlanCategory) DurationDays() int {
	if c == PlanCategoryMonthly {
		return 30
	}
	return 7
}

type Subscription struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	PlanType        PlanCategory
	StartDate       time.Time
	EndDate         time.Time
	Status          SubscriptionStatus
	ProcessorSubRef *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectiveStatus derives expiry at read time. The stored status is never
// swept to expired; an active row whose end date has passed reads as expired.
func (s *Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == SubscriptionStatusActive && !s.EndDate.After(now) {
		return SubscriptionStatusExpired
	}
	return s.Status
}

func (s *Subscription) IsUsable(now time.Time) bool {
	return s.EffectiveStatus(now) == SubscriptionStatusActive
}
