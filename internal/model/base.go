package model

import (
	"github.com/google/uuid"
)

func ensureId(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every table managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&MealPlan{},
		&Subscription{},
		&Meal{},
		&Payment{},
		&RefundRequest{},
		&WebhookEvent{},
	}
}
