package apperr

import (
	"errors"
	"fmt"
)

// Kind buckets every failure the service can surface to a user.
type Kind string

const (
	KindTransportUnavailable     Kind = "transport_unavailable"
	KindPersistenceConflict      Kind = "persistence_conflict"
	KindActivationPartialFailure Kind = "activation_partial_failure"
	KindNotAuthorized            Kind = "not_authorized"
	KindValidationFailure        Kind = "validation_failure"
)

// Error carries a kind plus a human-readable message. None of these are
// fatal: callers log them and degrade to the last known-good state.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, defaulting to transport-unavailable
// for untyped failures coming back from external calls.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindTransportUnavailable
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "service temporarily unavailable, please retry"
}

// HTTPStatus maps a kind to the response code the error handler emits.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotAuthorized:
		return 401
	case KindValidationFailure:
		return 400
	case KindPersistenceConflict:
		return 409
	default:
		return 503
	}
}
