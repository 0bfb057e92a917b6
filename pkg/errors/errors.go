// Package errors provides structured error types for foxy.
//
// Every failure that reaches the command line carries a machine-readable
// Code so that scripts driving foxy (usually Composer hooks) can tell a
// misconfigured project from a failing asset manager.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: configuration, manifest or input validation failures
//   - MANAGER_*: asset manager lookup and version checks
//   - PROCESS_FAILED, TIMEOUT: external process failures
//   - NOT_FOUND, INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeManagerNotFound, "the asset manager %q doesn't exist", name)
//	if errors.Is(err, errors.ErrCodeManagerNotFound) {
//	    // Handle lookup error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "parse %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"

	// Asset manager errors
	ErrCodeManagerNotFound    Code = "MANAGER_NOT_FOUND"
	ErrCodeManagerUnavailable Code = "MANAGER_UNAVAILABLE"
	ErrCodeManagerVersion     Code = "MANAGER_VERSION"

	// Process errors
	ErrCodeProcessFailed Code = "PROCESS_FAILED"
	ErrCodeTimeout       Code = "TIMEOUT"

	// Generic errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ExitError reports the exit status of an external process that failed.
type ExitError struct {
	Command  string // Program name, e.g. "npm"
	ExitCode int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// Code returns the error code for this error type.
func (e *ExitError) Code() Code {
	return ErrCodeProcessFailed
}
