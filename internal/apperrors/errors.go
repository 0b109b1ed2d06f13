package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so handlers can pick the right
// response code. InvalidState and RateLimited are routine outcomes,
// not defects, and must stay distinguishable from NotFound.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindUnauthorized
	KindRateLimited
	KindConflict
)

// Error is a standardized application error carrying a Kind, a
// user-facing message and an optional wrapped internal error.
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

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to an HTTP response code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent project/sprint/task/invitation/user.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidState reports a violated domain rule (sprint overlap,
// invitation already responded to, and the like).
func InvalidState(format string, args ...any) *Error {
	return newError(KindInvalidState, format, args...)
}

// Unauthorized reports an acting user without the required rights.
func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, format, args...)
}

// RateLimited reports an exhausted rate bucket.
func RateLimited(format string, args ...any) *Error {
	return newError(KindRateLimited, format, args...)
}

// Conflict reports a duplicate (pending invitation, membership).
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// Internal wraps an unexpected error with a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Status returns the HTTP code for any error; plain errors map to 500.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
