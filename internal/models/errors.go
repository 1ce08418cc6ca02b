package models

import (
	"errors"
	"strings"
)

var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("an account with this email already exists")
)

// ValidationError is returned when a required field is empty or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NullableTrim returns nil for nil or blank input, otherwise the trimmed value.
func NullableTrim(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
