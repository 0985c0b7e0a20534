package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// postMigrationSQL holds the constraints AutoMigrate cannot express.
var postMigrationSQL = []string{
	// One live booking per user and slot. Slot times are normalised on write.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_meals_live_slot
	 ON meals (user_id, meal_type, meal_date)
	 WHERE status <> 'cancelled';`,

	// At most one pending refund request per payment.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_refund_requests_pending
	 ON refund_requests (payment_id)
	 WHERE status = 'pending';`,

	`CREATE OR REPLACE VIEW user_payment_history AS
	 SELECT p.user_id, u.full_name, p.payment_type, p.amount, p.status, p.processor_payment_ref, p.created_at AS payment_date
	 FROM payments p
	 JOIN users u ON p.user_id = u.id
	 ORDER BY p.created_at DESC;`,
}

// MigratePostgres creates the schema for models plus the partial indexes and views.
func MigratePostgres(db *gorm.DB, models ...interface{}) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("post-migration: %w", err)
		}
	}
	return nil
}
