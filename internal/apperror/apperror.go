// Package apperror defines the error kinds the auth service hands to its callers.
// The HTTP layer is the only place that turns a kind into a status code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error
type Kind int

const (
	// InternalError is a store or primitive failure the caller cannot fix
	InternalError Kind = iota
	// ValidationError is malformed or missing input
	ValidationError
	// ConflictError is a duplicate identity
	ConflictError
	// AuthError is a bad username/password pair
	AuthError
	// RateLimitError means too many failed logins for one username
	RateLimitError
)

func (k Kind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case ConflictError:
		return "conflict"
	case AuthError:
		return "auth"
	case RateLimitError:
		return "rate_limit"
	default:
		return "internal"
	}
}

// Error carries a kind, a caller-safe message and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind.
// Duplicate registrations and bad credentials are 400, matching the form's contract.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case ValidationError, ConflictError, AuthError:
		return http.StatusBadRequest
	case RateLimitError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates an Error of the given kind
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidationError(message string) *Error {
	return New(ValidationError, message, nil)
}

func NewConflictError(message string, err error) *Error {
	return New(ConflictError, message, err)
}

func NewAuthError(message string) *Error {
	return New(AuthError, message, nil)
}

func NewRateLimitError(message string) *Error {
	return New(RateLimitError, message, nil)
}

func NewInternalError(message string, err error) *Error {
	return New(InternalError, message, err)
}

// KindOf reports the kind of err. Anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return InternalError
}
