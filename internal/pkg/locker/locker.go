package locker

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when a key stays held past the caller's deadline.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Locker serializes work on a key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// UserKey scopes a lock to one user's bookings.
func UserKey(userId string) string {
	return "lock:user:" + userId
}

// PaymentKey scopes a lock to one payment's settlement.
func PaymentKey(paymentId string) string {
	return "lock:payment:" + paymentId
}

// RefundKey scopes a lock to one refund request's decision.
func RefundKey(refundId string) string {
	return "lock:refund:" + refundId
}
