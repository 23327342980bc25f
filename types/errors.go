package types

import (
	"errors"
	"fmt"
)

// ErrSkipped signals that a test chose not to run. An action returns it
// (directly or wrapped) to record a skip outcome instead of a pass.
var ErrSkipped = errors.New("test skipped")

// Skip wraps ErrSkipped with a reason for the report.
func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkipped, reason)
}

// AssertionError represents a test's own correctness check failing.
// Actions return it to record a Failed outcome; every other non-nil error is
// treated as an unexpected runtime error instead.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s", e.Message)
}

// NewAssertionError creates a new AssertionError
func NewAssertionError(format string, args ...any) *AssertionError {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// IsAssertionError checks if the error is or wraps an AssertionError
func IsAssertionError(err error) bool {
	var assertErr *AssertionError
	return err != nil && errors.As(err, &assertErr)
}

// ClassifyActionError maps an action's returned error to a terminal status.
func ClassifyActionError(err error) TestStatus {
	switch {
	case err == nil:
		return TestStatusPass
	case errors.Is(err, ErrSkipped):
		return TestStatusSkip
	case IsAssertionError(err):
		return TestStatusFail
	default:
		return TestStatusError
	}
}
