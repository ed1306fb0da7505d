package core

import "errors"

// Error taxonomy for the accounting core. Violations wrap one of these
// sentinels with a message stating the violated bound, so callers can
// branch with errors.Is and still surface a human-readable reason.
var (
	// ErrValidation marks an out-of-contract input: non-positive
	// amounts, payments exceeding the remaining balance, installment
	// payments that do not match the fixed amount, zero installments.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a loan or record id that does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks an operation against a loan already in a
	// terminal state.
	ErrInvalidState = errors.New("invalid state")
)
