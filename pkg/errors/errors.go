// Package errors provides structured error types for pathcover.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the core packages and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Misuse of an API or malformed input
//   - NOT_FOUND: Referenced entity does not exist
//   - IO_ERROR, INTERRUPTED: Environmental failures that abort a run
//   - INFEASIBLE: The flow reduction has no saturating solution
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidState, "network is already shut down")
//	if errors.Is(err, errors.ErrCodeInvalidState) {
//	    // Programming error, do not retry
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write batch %d", idx)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Misuse and input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidState Code = "INVALID_STATE"
	ErrCodeUnderflow    Code = "STACK_UNDERFLOW"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Environmental errors
	ErrCodeIO          Code = "IO_ERROR"
	ErrCodeInterrupted Code = "INTERRUPTED"
	ErrCodeNetwork     Code = "NETWORK_ERROR"

	// Algorithmic errors
	ErrCodeInfeasible Code = "INFEASIBLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsFatal reports whether err aborts a cover run without any possible retry.
// Misuse, I/O failures, interrupted rendezvous and infeasible reductions all
// leave the flow network in a partially mutated state.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidState, ErrCodeUnderflow, ErrCodeIO, ErrCodeInterrupted, ErrCodeInfeasible:
		return true
	}
	return false
}
