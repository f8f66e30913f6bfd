// Package apperr carries the request-level error taxonomy: client input,
// not found, unauthenticated and storage failures, each bound to an HTTP
// status and a message that is safe to return to callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// InternalMessage is the fallback message for failures without one
const InternalMessage = "Internal Server Error"

// Error wraps an underlying error with an HTTP status and safe message.
type Error struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause returns the message of the wrapped error, or "" when there is none
func (e *Error) Cause() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// New creates a new Error with the provided information.
func New(err error, status int, message string) *Error {
	return &Error{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// BadRequest reports invalid client input
func BadRequest(message string) *Error {
	return New(nil, http.StatusBadRequest, message)
}

// NotFound reports a missing record. sentinel lets callers match with errors.Is.
func NotFound(sentinel error, message string) *Error {
	return New(sentinel, http.StatusNotFound, message)
}

// Unauthorized reports a failed authentication check
func Unauthorized(message string) *Error {
	return New(nil, http.StatusUnauthorized, message)
}

// Conflict reports a uniqueness violation
func Conflict(message string) *Error {
	return New(nil, http.StatusConflict, message)
}

// Storage wraps a database or upstream failure. Callers may retry.
func Storage(err error, message string) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInternalServerError, message)
}

// StatusOf returns the HTTP status carried by err, defaulting to 500
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether err maps to a 4xx status
func IsClientError(err error) bool {
	s := StatusOf(err)
	return s >= 400 && s < 500
}
