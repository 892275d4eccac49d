package repository

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a repository failure.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConnectivity ErrorKind = "connectivity"
	KindTimeout      ErrorKind = "timeout"
	KindServer       ErrorKind = "server"
	KindNotFound     ErrorKind = "not_found"
)

// Error normalizes every failure into a single human-readable UserMessage
// while preserving the original error for logging and programmatic handling.
type Error struct {
	Kind        ErrorKind
	Status      int // HTTP status for server errors, zero otherwise
	UserMessage string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.UserMessage + ": " + e.Err.Error()
	}
	return e.UserMessage
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a kind and a user-facing message.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, UserMessage: message, Err: err}
}

// NotFound reports that no transaction with the given id exists.
func NotFound(id string) *Error {
	return &Error{
		Kind:        KindNotFound,
		UserMessage: fmt.Sprintf("transaction %s not found", id),
	}
}

// ServerError carries the status-derived message of a failed remote call.
func ServerError(status int, message string, err error) *Error {
	if message == "" {
		message = fmt.Sprintf("server error: %d", status)
	}
	return &Error{Kind: KindServer, Status: status, UserMessage: message, Err: err}
}

// KindOf returns the kind of a repository error, or the empty string when
// err does not carry one.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// UserMessage returns the normalized message attached to err, falling back
// to err.Error() for plain errors.
func UserMessage(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.UserMessage
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
