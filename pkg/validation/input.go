package validation

import (
	"errors"
	"fmt"

	"github.com/propforma/propforma/pkg/mathutil"
)

// InvalidInputError reports a numeric input rejected before any calculation
// runs. The calculation packages return it instead of letting NaN or Inf
// propagate through arithmetic.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%v %s", e.Field, e.Value, e.Reason)
}

// NewInvalidInput builds an InvalidInputError for the given field.
func NewInvalidInput(field string, value float64, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

// IsInvalidInput reports whether err is, or wraps, an InvalidInputError.
func IsInvalidInput(err error) bool {
	var invalid *InvalidInputError
	return errors.As(err, &invalid)
}

// RequireFinite rejects NaN and infinite values.
func RequireFinite(field string, value float64) error {
	if !mathutil.IsFinite(value) {
		return NewInvalidInput(field, value, "must be finite")
	}
	return nil
}

// RequireNonNegative rejects NaN, infinite, and negative values.
func RequireNonNegative(field string, value float64) error {
	if err := RequireFinite(field, value); err != nil {
		return err
	}
	if value < 0 {
		return NewInvalidInput(field, value, "must not be negative")
	}
	return nil
}

// RequirePositive rejects NaN, infinite, and non-positive values.
func RequirePositive(field string, value float64) error {
	if err := RequireFinite(field, value); err != nil {
		return err
	}
	if value <= 0 {
		return NewInvalidInput(field, value, "must be positive")
	}
	return nil
}

// RequireFraction rejects values outside the closed interval [0, 1].
func RequireFraction(field string, value float64) error {
	if err := RequireFinite(field, value); err != nil {
		return err
	}
	if value < 0 || value > 1 {
		return NewInvalidInput(field, value, "must be between 0 and 1")
	}
	return nil
}
