// Package errors defines the coded errors returned by graphwire packages.
//
// Every error carries a [Code] that callers branch on, a message for people,
// and optionally the error it wraps. [Is] and [GetCode] look through
// fmt.Errorf("%w") wrapping, so context can be added freely on the way up.
//
// # Decode failures
//
// A decode that fails reports one of:
//   - INVALID_FORMAT: the document is not shaped like a graphwire document
//   - SCHEMA_MISMATCH: a package, class or feature cannot be resolved
//   - UNKNOWN_REFERENCE: a back-reference points at an id that was never defined
//   - RECONCILE_VIOLATION: a list reconciliation lost an existing element
//
// Malformed scalar values are not errors; the codec applies defaults instead.
//
//	if errors.Is(err, errors.ErrCodeSchemaMismatch) {
//	    // wrong or missing package definition
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidSchema Code = "INVALID_SCHEMA"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidKey    Code = "INVALID_KEY"

	// Decode errors
	ErrCodeSchemaMismatch     Code = "SCHEMA_MISMATCH"
	ErrCodeUnknownReference   Code = "UNKNOWN_REFERENCE"
	ErrCodeReconcileViolation Code = "RECONCILE_VIOLATION"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Store backend errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error.
type Error struct {
	Code    Code
	Message string
	Cause   error // may be nil
}

// Error formats as "CODE: message[: cause]".
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like [New] with cause attached.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code,
// or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsDecodeFailure reports whether err aborted a decode: a format, schema,
// unknown-reference or reconciliation error.
func IsDecodeFailure(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidFormat, ErrCodeSchemaMismatch, ErrCodeUnknownReference, ErrCodeReconcileViolation:
		return true
	}
	return false
}
