// Package apierr defines the domain error taxonomy shared by all services.
//
// Every failure a handler can produce is an *Error carrying a Kind. The
// HTTP layer owns the single translation point from Kind to status code
// and response shape; services never format transport responses
// themselves.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport-level translation.
type Kind int

const (
	// KindUnknown covers anything unanticipated. Message is suppressed
	// from clients and logged server-side.
	KindUnknown Kind = iota
	// KindValidation is a request-shape failure with field-level detail.
	KindValidation
	// KindAuthentication covers missing, expired, or invalid credentials.
	KindAuthentication
	// KindAuthorization means the principal lacks a required role.
	KindAuthorization
	// KindNotFound means the entity is absent or logically deleted.
	KindNotFound
	// KindConflict covers uniqueness violations, capacity limits, and
	// duplicate participants.
	KindConflict
	// KindConfiguration is a server-side misconfiguration, distinct from
	// any caller error.
	KindConfiguration
)

// FieldError describes a single violated field in a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the domain error type. Kind drives HTTP translation; Details
// is populated only for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Operational reports whether the message is safe to return verbatim to
// the caller. Non-operational (5xx) errors get a generic client message.
func (e *Error) Operational() bool { return e.Status() < 500 }

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind with an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation creates a 400-class error listing every violated field.
func Validation(details []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation error", Details: details}
}

// NotFound creates a 404-class error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict creates a 409-class error.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Unauthenticated creates a 401-class error.
func Unauthenticated(message string) *Error { return New(KindAuthentication, message) }

// Forbidden creates a 403-class error.
func Forbidden(message string) *Error { return New(KindAuthorization, message) }

// Configuration creates a 500-class configuration error.
func Configuration(message string) *Error { return New(KindConfiguration, message) }

// Internal wraps an unanticipated failure.
func Internal(cause error) *Error {
	return &Error{Kind: KindUnknown, Message: "Internal Server Error", cause: cause}
}

// From extracts an *Error from err, or wraps it as KindUnknown.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
