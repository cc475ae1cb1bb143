package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a business failure so handlers can map it to an HTTP status
// without string matching.
type Code string

const (
	CodeNotFound             Code = "NOT_FOUND"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"
	CodeInsufficientQuantity Code = "INSUFFICIENT_QUANTITY"
	CodeInsufficientCapacity Code = "INSUFFICIENT_CAPACITY"
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeConcurrencyConflict  Code = "CONCURRENCY_CONFLICT"
	// CodeDuplicateEvent marks an already-processed webhook replay. It is a
	// no-op success for the caller, never a failure.
	CodeDuplicateEvent Code = "DUPLICATE_EVENT"
)

type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(CodeNotFound, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return New(CodeInvalidTransition, format, args...)
}

func InsufficientQuantity(format string, args ...interface{}) *Error {
	return New(CodeInsufficientQuantity, format, args...)
}

func InsufficientCapacity(format string, args ...interface{}) *Error {
	return New(CodeInsufficientCapacity, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return New(CodeValidation, format, args...)
}

func ConcurrencyConflict(format string, args ...interface{}) *Error {
	return New(CodeConcurrencyConflict, format, args...)
}

func DuplicateEvent(format string, args ...interface{}) *Error {
	return New(CodeDuplicateEvent, format, args...)
}

// CodeOf returns the failure code of err, or "" for plain infrastructure
// errors that should surface as a generic 500.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
