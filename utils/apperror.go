package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced to API callers.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindAuthentication    ErrorKind = "authentication"
	KindAuthorization     ErrorKind = "authorization"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindConflict          ErrorKind = "conflict"
	KindDependency        ErrorKind = "dependency"
)

// AppError is an error with a kind that maps to an HTTP status.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...interface{}) error {
	return newAppError(KindValidation, format, args...)
}

func NewAuthenticationError(format string, args ...interface{}) error {
	return newAppError(KindAuthentication, format, args...)
}

func NewAuthorizationError(format string, args ...interface{}) error {
	return newAppError(KindAuthorization, format, args...)
}

func NewNotFoundError(format string, args ...interface{}) error {
	return newAppError(KindNotFound, format, args...)
}

func NewInvalidTransitionError(format string, args ...interface{}) error {
	return newAppError(KindInvalidTransition, format, args...)
}

func NewConflictError(format string, args ...interface{}) error {
	return newAppError(KindConflict, format, args...)
}

// NewDependencyError wraps a storage or downstream failure.
func NewDependencyError(message string, err error) error {
	return &AppError{Kind: KindDependency, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindDependency for foreign errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependency
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
