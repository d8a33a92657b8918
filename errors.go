package canopy

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	// ErrCodeConfiguration covers recoverable configuration problems: scale
	// merges with conflicting directions, malformed incoming data, unknown
	// layer or effect kinds, a second axis layer. The previous valid state
	// is kept.
	ErrCodeConfiguration Code = "CONFIGURATION_ERROR"

	// ErrCodeLifecycle covers misuse of a lifecycle such as playing an
	// animation that is already playing. These are logged, never returned.
	ErrCodeLifecycle Code = "LIFECYCLE_MISUSE"

	// ErrCodeLayerFailure wraps an error or panic raised by a layer
	// implementation inside a lifecycle call.
	ErrCodeLayerFailure Code = "LAYER_FAILURE"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError creates a new Error wrapping an existing error.
func WrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsCode reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ErrorHandler receives recoverable errors the core has already logged.
type ErrorHandler func(err error)
