package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a platenum error code.
type ErrorCode string

const (
	ErrInvalidInput    ErrorCode = "INVALID_INPUT"      // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"          // 404
	ErrIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE" // 404
	ErrDataLoad        ErrorCode = "DATA_LOAD"          // 503
	ErrInternal        ErrorCode = "INTERNAL"           // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewInvalidInput creates a 400 error for empty or unusable input.
func NewInvalidInput(msg string) *Error {
	return &Error{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a number with no interpretation.
func NewNotFound(number int) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: "Numerology data not found for this number",
		Details: map[string]any{"number": number},
	}
}

// NewIndexOutOfRange creates a 404 error for a history index past the end of the log.
func NewIndexOutOfRange(index, length int) *Error {
	return &Error{
		Code:    ErrIndexOutOfRange,
		Status:  404,
		Message: fmt.Sprintf("history index %d out of range (%d entries)", index, length),
		Details: map[string]any{"index": index, "length": length},
	}
}

// NewDataLoad creates a 503 error when the interpretation data cannot be loaded.
// The user-facing message is fixed; the cause is kept for logs.
func NewDataLoad(cause error) *Error {
	return &Error{
		Code:    ErrDataLoad,
		Status:  503,
		Message: "Failed to load numerology data. Please refresh the page.",
		cause:   cause,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As is a shortcut for errors.As with an *Error target.
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}
