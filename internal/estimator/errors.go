package estimator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter matches every *ParameterError.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidConfig is returned for malformed complexity types, memory access
	// models and other configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInapplicable is returned by algorithm factories when the attack does
	// not apply to the given problem. Estimators skip such algorithms.
	ErrInapplicable = errors.New("algorithm not applicable")

	// ErrNotImplemented is returned when an algorithm has no asymptotic model.
	ErrNotImplemented = errors.New("not implemented")
)

// ParameterError reports a structurally invalid problem or algorithm parameter.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// Is implements error matching for errors.Is.
func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// RangeError reports a parameter range that would exclude a value already
// fixed for that parameter, or a range that is empty.
type RangeError struct {
	Name     string
	Min, Max int
	Value    int
	Empty    bool
}

func (e *RangeError) Error() string {
	if e.Empty {
		return fmt.Sprintf("parameter %s: empty range [%d, %d]", e.Name, e.Min, e.Max)
	}
	return fmt.Sprintf("parameter %s: range [%d, %d] excludes fixed value %d", e.Name, e.Min, e.Max, e.Value)
}

// Is implements error matching for errors.Is.
func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// Inapplicable wraps ErrInapplicable with the reason an attack does not apply.
func Inapplicable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInapplicable, fmt.Sprintf(format, args...))
}
