package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrEmptyKeyword  = errors.New("keyword must not be empty")
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrEmptyAnswer   = errors.New("answer must not be empty")
	ErrEmptyQuery    = errors.New("query must not be empty")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
