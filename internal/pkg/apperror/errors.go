package apperror

import (
	"errors"
	"fmt"
)

// Kind groups errors by how the caller-facing layer must report them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternal:
		return "external"
	default:
		return "internal"
	}
}

// Error is a named outcome. Two errors match under errors.Is when their codes match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of the sentinel carrying cause.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Err:     cause,
	}
}

// WithMessage returns a copy of the sentinel with a more specific message.
func WithMessage(sentinel *Error, message string) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: message,
	}
}

// KindOf reports the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Business rule rejections
var (
	ErrDuplicateBooking      = New(KindConflict, "DUPLICATE_BOOKING", "you already have a meal booked for this date and meal type")
	ErrDuplicateSubscription = New(KindConflict, "DUPLICATE_SUBSCRIPTION", "you already have an active subscription")
	ErrPastDate              = New(KindValidation, "PAST_DATE", "meals cannot be booked for a time in the past")
	ErrTooLate               = New(KindConflict, "TOO_LATE", "past meals cannot be cancelled")
	ErrAlreadyCancelled      = New(KindConflict, "ALREADY_CANCELLED", "meal already cancelled")
	ErrUnauthorized          = New(KindForbidden, "UNAUTHORIZED", "you are not allowed to act on this record")
	ErrAlreadyPaid           = New(KindConflict, "ALREADY_PAID", "payment already processed")
	ErrAlreadyProcessed      = New(KindConflict, "ALREADY_PROCESSED", "refund request already processed")
	ErrRefundPending         = New(KindConflict, "REFUND_PENDING", "a refund request for this payment is already pending")
	ErrNotRefundable         = New(KindConflict, "NOT_REFUNDABLE", "only completed payments can be refunded")
	ErrPlanInactive          = New(KindConflict, "PLAN_INACTIVE", "meal plan is not available")
	ErrSubscriptionInactive  = New(KindConflict, "SUBSCRIPTION_INACTIVE", "subscription is no longer active")
	ErrEmailTaken            = New(KindConflict, "EMAIL_TAKEN", "email is already in use")
	ErrUsernameTaken         = New(KindConflict, "USERNAME_TAKEN", "username is already in use")
)

// Input and lookup failures
var (
	ErrInvalidInput    = New(KindValidation, "INVALID_INPUT", "invalid request")
	ErrUnauthenticated = New(KindUnauthenticated, "UNAUTHENTICATED", "authentication required")
	ErrAdminOnly       = New(KindForbidden, "ADMIN_ONLY", "access denied: admins only")

	ErrMealNotFound         = New(KindNotFound, "MEAL_NOT_FOUND", "meal not found")
	ErrPlanNotFound         = New(KindNotFound, "PLAN_NOT_FOUND", "meal plan not found")
	ErrSubscriptionNotFound = New(KindNotFound, "SUBSCRIPTION_NOT_FOUND", "subscription not found")
	ErrPaymentNotFound      = New(KindNotFound, "PAYMENT_NOT_FOUND", "payment not found")
	ErrRefundNotFound       = New(KindNotFound, "REFUND_REQUEST_NOT_FOUND", "refund request not found")
	ErrUserNotFound         = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrLogNotFound          = New(KindNotFound, "LOG_NOT_FOUND", "log entry not found")
)

// External dependency failures
var (
	ErrInvalidSignature = New(KindValidation, "INVALID_SIGNATURE", "invalid webhook signature")
	ErrInvalidPayload   = New(KindValidation, "INVALID_PAYLOAD", "invalid webhook payload")
	ErrProcessor        = New(KindExternal, "PROCESSOR_UNAVAILABLE", "payment processor request failed")
	ErrRefundFailed     = New(KindExternal, "REFUND_FAILED", "refund processing failed")
)

// ErrInvariant marks corrupted state detected during an operation.
var ErrInvariant = New(KindInternal, "INVARIANT_VIOLATION", "data inconsistency detected")
