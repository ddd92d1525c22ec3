// Package errors provides structured error handling for the freelist library
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeAllocation represents a failure to obtain backing memory
	// at pool construction time. Fatal: no pool is produced.
	ErrorTypeAllocation ErrorType = "allocation"
	// ErrorTypeExhausted signals that every slot in the pool is
	// currently outstanding. Recoverable: retry after a release.
	ErrorTypeExhausted ErrorType = "exhausted"
	// ErrorTypeConstructor wraps a failure from an in-place
	// constructor callback. The slot stays acquired and must be
	// handed back via Release.
	ErrorTypeConstructor ErrorType = "constructor"
	// ErrorTypeInvalidRelease represents a programming error caught by
	// the validated mode: an out-of-range, misaligned, or already-free
	// address passed to a release operation.
	ErrorTypeInvalidRelease ErrorType = "invalid_release"
	// ErrorTypeClosed represents an operation on a closed or moved-from pool
	ErrorTypeClosed ErrorType = "closed"
	// ErrorTypeConfig represents invalid construction parameters
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeInternal represents internal invariant violations
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsExhausted returns true if the error signals an exhausted pool
func IsExhausted(err error) bool {
	return IsType(err, ErrorTypeExhausted)
}

// IsInvalidRelease returns true if the error was raised by release validation
func IsInvalidRelease(err error) bool {
	return IsType(err, ErrorTypeInvalidRelease)
}

// IsRetryable returns true if the error is retryable. For a
// fixed-capacity pool only exhaustion clears after other callers make
// progress; everything else is either fatal or a programming error.
func IsRetryable(err error) bool {
	return IsExhausted(err)
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
