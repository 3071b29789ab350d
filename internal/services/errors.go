package services

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence wraps any failure to store an order. Nothing is committed
	// when it is returned.
	ErrPersistence     = errors.New("failed to save order")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not allowed to access this resource")
	ErrInvalidToken    = errors.New("invalid token")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
