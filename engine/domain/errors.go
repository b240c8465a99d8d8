package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across pipeline components.
var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrQueryTooShort   = errors.New("query too short")
	ErrQueryInjection  = errors.New("query contains suspicious content")
	ErrUnknownCorpus   = errors.New("unknown corpus")
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
