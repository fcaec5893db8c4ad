// Package errors provides structured error types for the fretboard engine.
//
// Every failure the engine, pipeline or CLI reports carries a [Code] so that
// callers can branch on the kind of problem without matching strings, and a
// message that names the offending input ("unknown tuning \"Nashville\"").
//
// # Error Codes
//
// The engine reports five domain failures:
//   - INVALID_PITCH: a chromatic position outside 0-11
//   - INVALID_SCALE_DEFINITION: an interval pattern that does not sum to 12
//   - UNKNOWN_TUNING: an unrecognized tuning name
//   - OUT_OF_RANGE: an invalid or oversized fret range
//   - NO_FINGERING_FOUND: the chord voicing search exhausted its candidates
//
// NO_FINGERING_FOUND is recoverable: callers may widen the span or move the
// starting fret and search again. See [IsRecoverable].
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPitch, "chromatic position %d outside 0-11", pos)
//	if errors.Is(err, errors.ErrCodeInvalidPitch) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors; the inner codes stay visible to Is.
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, problems, "invalid configuration")
//	errors.Is(err, errors.ErrCodeUnknownTuning) // true if any problem is one
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine errors
	ErrCodeInvalidPitch           Code = "INVALID_PITCH"
	ErrCodeInvalidScaleDefinition Code = "INVALID_SCALE_DEFINITION"
	ErrCodeUnknownTuning          Code = "UNKNOWN_TUNING"
	ErrCodeOutOfRange             Code = "OUT_OF_RANGE"
	ErrCodeNoFingeringFound       Code = "NO_FINGERING_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Recoverable reports whether a failure with this code can be retried with
// different search parameters.
func (c Code) Recoverable() bool { return c == ErrCodeNoFingeringFound }

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message naming the input
	Cause   error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code, so a bare &Error{Code: c} works as a
// target for the standard library's errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Code == e.Code
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err or any error it wraps carries the given code.
func Is(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// GetCode returns the code of the outermost *Error in err's chain, or the
// empty string when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code
// prefix. Other errors are returned as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Details returns the messages of the errors directly below the outermost
// *Error, one per problem. A joined cause (multierr, errors.Join) yields one
// entry per member. It returns nil when there is nothing to add.
func Details(err error) []string {
	var e *Error
	if !errors.As(err, &e) || e.Cause == nil {
		return nil
	}
	var causes []error
	switch joined := e.Cause.(type) {
	case interface{ Unwrap() []error }:
		causes = joined.Unwrap()
	case interface{ Errors() []error }:
		causes = joined.Errors()
	default:
		causes = []error{e.Cause}
	}
	details := make([]string, 0, len(causes))
	for _, c := range causes {
		details = append(details, UserMessage(c))
	}
	return details
}

// IsRecoverable reports whether the caller can retry the operation with
// different parameters. Only the outermost code counts, so a recoverable
// failure wrapped as INTERNAL_ERROR is not.
func IsRecoverable(err error) bool {
	return GetCode(err).Recoverable()
}
