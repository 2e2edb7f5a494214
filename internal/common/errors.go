// Package common defines shared constants and sentinel errors used across
// client and server layers of waterwatch. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrStore marks an opaque persistence failure. The wrapped detail is
	// logged, never shown to the caller.
	ErrStore = errors.New("store error")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingCredential = errors.New("missing credential")

	// ErrTokenExpired matches ErrInvalidToken as well.
	ErrTokenExpired = &tokenExpiredError{}
)

type tokenExpiredError struct{}

func (e *tokenExpiredError) Error() string { return "token expired" }
func (e *tokenExpiredError) Unwrap() error { return ErrInvalidToken }

// ValidationError lists the request fields that were missing or malformed.
// It matches ErrorValidation with errors.Is.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrorValidation.Error()
	}
	return ErrorValidation.Error() + ": invalid or missing " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}
