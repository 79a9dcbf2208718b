package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input shape errors
	ErrInvalidInput    = errors.New("invalid input shape")
	ErrEmptyDataset    = fmt.Errorf("%w: empty dataset", ErrInvalidInput)
	ErrRowWidth        = fmt.Errorf("%w: row width mismatch", ErrInvalidInput)
	ErrTraceLength     = fmt.Errorf("%w: trace length mismatch", ErrInvalidInput)
	ErrEmptyStateSpace = fmt.Errorf("%w: empty state space", ErrInvalidInput)

	// Model errors
	ErrModelInvalid  = errors.New("model validation failed")
	ErrModelNotFound = errors.New("model not found")

	// Resource errors
	ErrResourceExceeded = errors.New("resource budget exceeded")

	// Persistence errors
	ErrRunNotFound = errors.New("run not found")
)

// NewInputError wraps ErrInvalidInput with a reason
func NewInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// NewResourceError reports a combinatorial blow-up before any work is committed
func NewResourceError(states, steps, limit int) error {
	return fmt.Errorf("%w: %d states over %d time steps exceeds joint budget %d",
		ErrResourceExceeded, states, steps, limit)
}

// IsInputError checks if an error stems from malformed input
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsResourceError checks if an error is a resource budget rejection
func IsResourceError(err error) bool {
	return errors.Is(err, ErrResourceExceeded)
}

// IsModelInvalid checks if an error is a model validation failure
func IsModelInvalid(err error) bool {
	return errors.Is(err, ErrModelInvalid)
}
