package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrRequiredField  = errors.New("required field missing")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTransport      = errors.New("upstream unreachable")
	ErrMalformedToken = errors.New("malformed token")
	ErrNoSession      = errors.New("no active session")
)

// Workflow errors
var (
	ErrActionNotOffered = errors.New("action not offered for record")
	ErrUnknownAction    = errors.New("unknown action")
	ErrSuperseded       = errors.New("request superseded by a newer one")
)

// RejectedError is a business or validation rejection returned by the upstream API
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream rejected request (status %d)", e.StatusCode)
	}
	return e.Message
}

// IsNotFound reports whether the rejection is a 404
func (e *RejectedError) IsNotFound() bool {
	return e.StatusCode == 404
}

// MissingField builds a required-field error naming the field
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrRequiredField, name)
}
