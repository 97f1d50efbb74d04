package router

import (
	"errors"
	"fmt"

	"github.com/shravanasati/relay/response"
)

// ErrInvalidPattern is wrapped by every pattern validation error.
var ErrInvalidPattern = errors.New("invalid route pattern")

var (
	ErrNotFound         = errors.New("404 not found")
	ErrMethodNotAllowed = errors.New("405 method not allowed")
)

// Error is the uniform failure of a routed service. Every failure coming out
// of a route is coerced to *Error; a failure that does not carry one becomes
// a 500.
type Error struct {
	Status response.StatusCode
	Err    error
}

// NewError builds an *Error with the given status.
func NewError(status response.StatusCode, err error) *Error {
	return &Error{Status: status, Err: err}
}

// Errorf builds an *Error with a formatted message.
func Errorf(status response.StatusCode, format string, args ...any) *Error {
	return &Error{Status: status, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Status.String()
	}
	return fmt.Sprintf("%s: %v", e.Status, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Internal wraps err as a 500.
func Internal(err error) *Error {
	return &Error{Status: response.StatusInternalServerError, Err: err}
}
