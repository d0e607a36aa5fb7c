package projection

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks sweep or KPI inputs that cannot produce a valid result.
	ErrInvalidParameter = errors.New("projection: invalid parameter")
	// ErrDegenerateRange is returned when UsersMin is greater than UsersMax.
	ErrDegenerateRange = errors.New("projection: degenerate user range")
)

// ParameterError describes the first offending input field.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidParameter, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidParameter, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidParameter.
func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func invalidParameter(field, reason string) error {
	return &ParameterError{Field: field, Reason: reason}
}
