package main

import (
	"log"
	"os"

	"meal-ordering-be/internal/model"
	"meal-ordering-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, database.DefaultOptions())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. AutoMigrate All Models, then partial indexes and views
	models := model.All()
	log.Printf("Running migration for %d tables...", len(models))
	if err := database.MigratePostgres(db, models...); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
