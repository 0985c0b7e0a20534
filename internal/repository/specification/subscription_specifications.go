package specification

import (
	"time"

	"gorm.io/gorm"
)

// ActiveSubscriptionAt matches subscriptions still usable at Now.
type ActiveSubscriptionAt struct {
	Now time.Time
}

func (s ActiveSubscriptionAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND end_date > ?", "active", s.Now)
}

type ByProcessorSubRef struct {
	Ref string
}

func (s ByProcessorSubRef) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("processor_sub_ref = ?", s.Ref)
}

// LapsedSubscriptionAt matches subscriptions that read as expired at Now.
type LapsedSubscriptionAt struct {
	Now time.Time
}

func (s LapsedSubscriptionAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? OR (status = ? AND end_date <= ?)", "expired", "active", s.Now)
}
