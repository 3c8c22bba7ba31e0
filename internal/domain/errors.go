package domain

import (
	"errors"
	"fmt"
)

// Terminal, user-correctable errors. The delivery layer maps each to a
// distinct HTTP status and message; none are retried by the core.
var (
	ErrInvalidOrderType       = errors.New("invalid order type")
	ErrDailyLimitExceeded     = errors.New("daily trade limit exceeded")
	ErrInsufficientBalance    = errors.New("insufficient simulator balance")
	ErrInvalidStateTransition = errors.New("invalid order state transition")
	ErrOrderNotFound          = errors.New("order not found")
	ErrNotOrderOwner          = errors.New("order belongs to another user")
)

// MissingFieldError reports a required field absent or out of range for
// the requested order type.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing or invalid required field: %s", e.Field)
}
