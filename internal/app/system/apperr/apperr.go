// internal/app/system/apperr/apperr.go

// Package apperr defines the error taxonomy shared by stores, policies, and
// HTTP handlers. Handlers map each kind to an HTTP status; stores return
// these instead of raw driver errors so callers can branch without string
// matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindUnknown is an unclassified internal error.
	KindUnknown Kind = iota
	// KindNotFound: the club/user/event/applicant does not exist.
	KindNotFound
	// KindConflict: duplicate application, ticket, or name.
	KindConflict
	// KindForbidden: insufficient role or admin privilege.
	KindForbidden
	// KindInvalidArgument: malformed or missing required fields.
	KindInvalidArgument
	// KindInvalidState: the action is not valid for the current lifecycle
	// state (e.g. withdrawing an accepted application).
	KindInvalidState
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind to a response status code. InvalidState maps to
// 409 alongside Conflict: both are lifecycle collisions, distinguishable by
// the kind name in the payload.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound, Conflict, Forbidden, InvalidArgument, and InvalidState are
// shorthand constructors for the five kinds.
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message) }
func InvalidState(message string) *Error    { return New(KindInvalidState, message) }

// KindOf returns the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
