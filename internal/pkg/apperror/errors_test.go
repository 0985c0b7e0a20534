package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesByCode(t *testing.T) {
	wrapped := Wrap(ErrRefundFailed, errors.New("card declined"))

	assert.True(t, errors.Is(wrapped, ErrRefundFailed))
	assert.False(t, errors.Is(wrapped, ErrProcessor))
	assert.Equal(t, "refund processing failed: card declined", wrapped.Error())
	assert.Equal(t, "card declined", errors.Unwrap(wrapped).Error())
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("cancel meal: %w", ErrTooLate)

	assert.True(t, errors.Is(err, ErrTooLate))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWithMessageKeepsIdentity(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "meal_date must be YYYY-MM-DD")

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "meal_date must be YYYY-MM-DD", err.Error())
	assert.Equal(t, "validation", err.Kind.String())
}
