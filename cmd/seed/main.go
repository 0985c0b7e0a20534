package main

import (
	"log"
	"os"

	"meal-ordering-be/internal/model"
	"meal-ordering-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type demoUser struct {
	Username string
	Email    string
	FullName string
	Role     string
}

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "changeme123"
	}

	db, err := database.NewGormDBFromDSN(dsn, database.DefaultOptions())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Error: Failed to hash seed password:", err)
	}
	encoded := string(hash)

	log.Println("Seeding demo accounts...")
	users := []demoUser{
		{Username: "admin", Email: "admin@campus.test", FullName: "Canteen Admin", Role: "admin"},
		{Username: "staff", Email: "staff@campus.test", FullName: "Staff Member", Role: "staff"},
		{Username: "student", Email: "student@campus.test", FullName: "Student Diner", Role: "student"},
	}
	for _, u := range users {
		var existing model.User
		if err := db.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			log.Printf("User '%s' already exists, skipping...", u.Email)
			continue
		}

		row := model.User{
			Username:      u.Username,
			Email:         u.Email,
			FullName:      u.FullName,
			Role:          u.Role,
			PasswordHash:  &encoded,
			IsActive:      true,
			EmailVerified: true,
		}
		if err := db.Create(&row).Error; err != nil {
			log.Printf("Error creating user '%s': %v", u.Email, err)
			continue
		}
		log.Printf("Created user: %s (%s)", u.Email, u.Role)
	}

	log.Println("Seeding meal plan catalog...")
	plans := []model.MealPlan{
		{Name: "Weekly", Description: "Three meals a day for seven days", Price: decimal.RequireFromString("70.00"), DurationDays: 7, MealsIncluded: 24, IsActive: true},
		{Name: "Monthly", Description: "Three meals a day for thirty days", Price: decimal.RequireFromString("250.00"), DurationDays: 30, MealsIncluded: 93, IsActive: true},
	}
	for _, p := range plans {
		var existing model.MealPlan
		if err := db.Where("name = ?", p.Name).First(&existing).Error; err == nil {
			log.Printf("Plan '%s' already exists, skipping...", p.Name)
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			log.Printf("Error creating plan '%s': %v", p.Name, err)
			continue
		}
		log.Printf("Created plan: %s", p.Name)
	}

	log.Println("✅ Seeding completed.")
}
