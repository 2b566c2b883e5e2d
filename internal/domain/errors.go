package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors independently of any transport.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindConflict    ErrorKind = "conflict"
	KindValidation  ErrorKind = "validation"
	KindUnavailable ErrorKind = "unavailable"
)

// Error is the domain error type. Message is safe to show to callers.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by kind. A target with a message must also match the message,
// so errors.Is(err, ErrLimitReached) is narrower than errors.Is(err, ErrConflict).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels, for errors.Is checks on the whole class.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInvalidInput = &Error{Kind: KindValidation}
	ErrUnavailable  = &Error{Kind: KindUnavailable}
)

// Reasons reported by the admission controller.
var (
	ErrUserNotFound    = NotFound("user not found")
	ErrEventNotFound   = NotFound("event not found")
	ErrRequestNotFound = NotFound("request not found")

	ErrEventNotPublished = Conflict("event not published")
	ErrSelfRequest       = Conflict("self-request")
	ErrDuplicateRequest  = Conflict("duplicate request")
	ErrLimitReached      = Conflict("limit reached")
	ErrNotAllPending     = Conflict("not all requests are pending")
)

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict returns a KindConflict error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Invalid returns a KindValidation error built from a format string.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a transient failure. Callers may retry after re-reading state.
func Unavailable(msg string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Cause: cause}
}

// KindOf returns the kind of the first domain error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
