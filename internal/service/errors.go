// Package service provides business logic for the application.
package service

import (
	"errors"

	"github.com/quillpost/quillpost/internal/validate"
)

// Service errors.
var (
	ErrPostNotFound       = errors.New("post not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already taken")
)

// ValidationError carries the field→message bag for a rejected input.
// It is recoverable: the caller re-renders the form with the messages.
type ValidationError struct {
	Fields validate.Errors
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError wraps a non-empty error bag.
func NewValidationError(fields validate.Errors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
