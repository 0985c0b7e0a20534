package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory database. All work is serialized over a
// single connection, so callers must not query outside an open transaction.
func NewSQLiteDB(name string, models ...interface{}) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=0", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  getLogger(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, Options{MaxOpenConns: 1, MaxIdleConns: 1}); err != nil {
		return nil, err
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}
