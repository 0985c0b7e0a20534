package events

// Lifecycle event codes.
const (
	MealBooked            = "MEAL_BOOKED"
	MealCancelled         = "MEAL_CANCELLED"
	MealConfirmed         = "MEAL_CONFIRMED"
	MealUnconfirmed       = "MEAL_UNCONFIRMED"
	SubscriptionCreated   = "SUBSCRIPTION_CREATED"
	SubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	PaymentCompleted      = "PAYMENT_COMPLETED"
	PaymentFailed         = "PAYMENT_FAILED"
	PaymentRefunded       = "PAYMENT_REFUNDED"
	RefundRequested       = "REFUND_REQUESTED"
	RefundApproved        = "REFUND_APPROVED"
	RefundRejected        = "REFUND_REJECTED"
	PlanCreated           = "PLAN_CREATED"
	PlanDeactivated       = "PLAN_DEACTIVATED"
	UserUpdated           = "USER_UPDATED"
)
