package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Booking DTOs ---

type BookMealRequest struct {
	MealType           string `json:"meal_type" validate:"required,oneof=breakfast lunch dinner"`
	MealDate           string `json:"meal_date" validate:"required,datetime=2006-01-02"`
	DietaryPreferences string `json:"dietary_preferences" validate:"max=200"`
}

type BookSubscriptionRequest struct {
	PlanType           string `json:"plan_type" validate:"required,oneof=weekly monthly"`
	DietaryPreferences string `json:"dietary_preferences" validate:"max=200"`
}

type MealResponse struct {
	Id                 uuid.UUID  `json:"id"`
	MealType           string     `json:"meal_type"`
	MealDate           time.Time  `json:"meal_date"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"payment_status"`
	DietaryPreferences *string    `json:"dietary_preferences,omitempty"`
	SubscriptionId     *uuid.UUID `json:"subscription_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// PaymentObligation tells the client that the meal must be paid before it is confirmed.
type PaymentObligation struct {
	MealId      uuid.UUID       `json:"meal_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type BookMealResponse struct {
	Meal       *MealResponse      `json:"meal"`
	Obligation *PaymentObligation `json:"obligation"`
}

type SubscriptionResponse struct {
	Id        uuid.UUID `json:"id"`
	PlanType  string    `json:"plan_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
}

type BookSubscriptionResponse struct {
	Subscription *SubscriptionResponse `json:"subscription"`
	MealsCreated int                   `json:"meals_created"`
	MealsSkipped int                   `json:"meals_skipped"`
}

type MealHistoryQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	DateFrom string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

type MealHistoryResponse struct {
	Meals []*MealResponse `json:"meals"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int64           `json:"total"`
}

type CancelMealResponse struct {
	Meal            *MealResponse `json:"meal"`
	RefundStatus    string        `json:"refund_status"`
	RefundMessage   string        `json:"refund_message,omitempty"`
	RefundRequestId *uuid.UUID    `json:"refund_request_id,omitempty"`
}

type UserDashboardResponse struct {
	Subscription   *SubscriptionResponse `json:"subscription"`
	UpcomingMeals  []*MealResponse       `json:"upcoming_meals"`
	RecentPayments []*PaymentResponse    `json:"recent_payments"`
}
