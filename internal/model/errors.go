package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that failed validation; match with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = errors.New("already exists")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
