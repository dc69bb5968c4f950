package models

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy
type ErrorCategory string

const (
	// ErrorValidation indicates input rejected locally or by the store.
	// Recoverable by correcting the reported field.
	ErrorValidation ErrorCategory = "validation"

	// ErrorNotFound indicates the target id does not exist in the store
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorTransport indicates a network or HTTP failure. The user may
	// re-trigger the action; nothing retries automatically.
	ErrorTransport ErrorCategory = "transport"
)

// Sentinels matched by errors.Is against any *Error of the same category.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
	ErrTransport  = errors.New("transport failure")
)

// ErrNotConfirmed is returned by delete operations invoked without the
// caller's confirmation. No request is made.
var ErrNotConfirmed = errors.New("delete not confirmed")

// Error wraps record operation failures with normalized categorization
type Error struct {
	Category   ErrorCategory
	Op         string // list, get, create, update, remove, validate
	StatusCode int    // HTTP status when the store answered, 0 otherwise
	Field      Field  // first invalid field for validation errors
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %s)", msg, e.Field)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Op, e.Category, msg, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Op, e.Category, msg)
}

// Unwrap supports error unwrapping
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is lets errors.Is(err, ErrNotFound) and friends match on category.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Category == ErrorValidation
	case ErrNotFound:
		return e.Category == ErrorNotFound
	case ErrTransport:
		return e.Category == ErrorTransport
	}
	return false
}

func NewValidationError(op string, field Field, message string) *Error {
	return &Error{Category: ErrorValidation, Op: op, Field: field, Message: message}
}

func NewNotFoundError(op string, id RecordID) *Error {
	return &Error{
		Category:   ErrorNotFound,
		Op:         op,
		StatusCode: 404,
		Message:    fmt.Sprintf("record %q not found", id.String()),
	}
}

func NewTransportError(op string, status int, message string, underlying error) *Error {
	return &Error{
		Category:   ErrorTransport,
		Op:         op,
		StatusCode: status,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory extracts the error category from an error. Errors that did
// not come from this taxonomy count as transport failures.
func GetCategory(err error) ErrorCategory {
	var re *Error
	if errors.As(err, &re) {
		return re.Category
	}
	return ErrorTransport
}

// InvalidField returns the field carried by a validation error, if any.
func InvalidField(err error) (Field, bool) {
	var re *Error
	if errors.As(err, &re) && re.Category == ErrorValidation && re.Field != "" {
		return re.Field, true
	}
	return "", false
}

// UserMessage renders an error for display. It never returns an empty string
// for a non-nil error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) && re.Message != "" {
		if re.Field != "" {
			return fmt.Sprintf("%s: %s", re.Field, re.Message)
		}
		return re.Message
	}
	return err.Error()
}
