package models

import (
	"errors"
	"fmt"
)

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

// ErrValidation is matched with errors.Is for any rejected request field
var ErrValidation = errors.New("validation failed")

// ValidationError names the field that failed validation
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError returns a ValidationError for field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
