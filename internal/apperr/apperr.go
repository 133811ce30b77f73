// Package apperr defines the error taxonomy shared by the service and HTTP layers.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a row that does not exist or is not owned by the caller.
var ErrNotFound = errors.New("not found")

// ValidationError rejects an operation before any write is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AuthError covers invalid credentials, expired sessions, and unauthenticated access.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Authf builds an AuthError with a human-readable message.
func Authf(format string, args ...interface{}) *AuthError {
	return &AuthError{Message: fmt.Sprintf(format, args...)}
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
