package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Catalog Management ---

type AdminCreatePlanRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	DurationDays  int             `json:"duration_days" validate:"required,gt=0"`
	MealsIncluded int             `json:"meals_included" validate:"required,gt=0"`
}

type AdminSubscriptionResponse struct {
	Id        uuid.UUID `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	PlanType  string    `json:"plan_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
}

// --- User Management ---

type AdminUserListQuery struct {
	Search string `query:"search"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

type AdminUpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=80"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=student staff admin"`
	IsActive *bool   `json:"is_active"`
}

type AdminUserResponse struct {
	Id          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// --- Analytics ---

type AdminDashboardStats struct {
	TotalUsers          int64                `json:"total_users"`
	ActiveSubscriptions int64                `json:"active_subscriptions"`
	MealsToday          int64                `json:"meals_today"`
	PendingRefunds      int64                `json:"pending_refunds"`
	Revenue             RevenueStats         `json:"revenue"`
	MealTypeStats       []MealTypeStat       `json:"meal_type_stats"`
	DailyMeals          []DailyMealStat      `json:"daily_meals"`
	RecentPayments      []*PaymentResponse   `json:"recent_payments"`
	RecentUsers         []*AdminUserResponse `json:"recent_users"`
}

type RevenueStats struct {
	Total        decimal.Decimal `json:"total"`
	Subscription decimal.Decimal `json:"subscription"`
	OneTime      decimal.Decimal `json:"one_time"`
}

type MealTypeStat struct {
	MealType string `json:"meal_type"`
	Count    int64  `json:"count"`
}

type DailyMealStat struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// --- Export ---

type ExportUserRow struct {
	Id        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ExportMealRow struct {
	Id       uuid.UUID `json:"id"`
	UserId   uuid.UUID `json:"user_id"`
	MealType string    `json:"meal_type"`
	MealDate time.Time `json:"meal_date"`
	Status   string    `json:"status"`
}
