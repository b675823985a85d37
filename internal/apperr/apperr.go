// Package apperr defines the single error type returned by services and mapped
// to HTTP responses by the handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status, a machine-readable code, a client-safe message
// and an optional structured payload (e.g. per-field validation failures).
// Cause is only logged, never returned to clients.
type Error struct {
	Status  int
	Code    string
	Message string
	Payload interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// WithPayload returns a copy of e carrying p.
func (e *Error) WithPayload(p interface{}) *Error {
	cp := *e
	cp.Payload = p
	return &cp
}

func newErr(status int, code, msg string) *Error {
	return &Error{Status: status, Code: code, Message: msg}
}

func BadRequest(msg string) *Error   { return newErr(http.StatusBadRequest, "BAD_REQUEST", msg) }
func Unauthorized(msg string) *Error { return newErr(http.StatusUnauthorized, "UNAUTHORIZED", msg) }
func Forbidden(msg string) *Error    { return newErr(http.StatusForbidden, "FORBIDDEN", msg) }
func Conflict(msg string) *Error     { return newErr(http.StatusConflict, "CONFLICT", msg) }
func Unavailable(msg string) *Error  { return newErr(http.StatusServiceUnavailable, "UNAVAILABLE", msg) }
func TooLarge(msg string) *Error     { return newErr(http.StatusRequestEntityTooLarge, "TOO_LARGE", msg) }

// NotFound builds a 404 for the named resource ("post not found").
func NotFound(resource string) *Error {
	return newErr(http.StatusNotFound, "NOT_FOUND", resource+" not found")
}

// Validation builds a 400 whose payload lists the failing fields.
func Validation(msg string, fields map[string]string) *Error {
	e := newErr(http.StatusBadRequest, "VALIDATION_ERROR", msg)
	if len(fields) > 0 {
		e.Payload = fields
	}
	return e
}

// BadGateway wraps a failure of an upstream dependency.
func BadGateway(msg string, cause error) *Error {
	e := newErr(http.StatusBadGateway, "BAD_GATEWAY", msg)
	e.Cause = cause
	return e
}

// Internal wraps an unexpected error; the message sent to clients is generic.
func Internal(cause error) *Error {
	e := newErr(http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	e.Cause = cause
	return e
}

// From extracts an *Error from err's chain, wrapping anything else as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Is reports whether err carries the given HTTP status.
func Is(err error, status int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == status
}
