// Package apperr classifies service errors for HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the error category.
type Kind int

const (
	// KindInternal is a storage failure or any unhandled fault.
	KindInternal Kind = iota
	// KindValidation is missing or malformed input.
	KindValidation
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindGone means the operation targeted an expired event.
	KindGone
	// KindForbidden is an authorization failure, including edit-after-expiry.
	KindForbidden
	// KindConflict is a duplicate unique key, e.g. email already registered.
	KindConflict
)

// Error is a classified error with a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Gone returns a KindGone error.
func Gone(msg string) error {
	return &Error{Kind: KindGone, Message: msg}
}

// Forbidden returns a KindForbidden error.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Conflict returns a KindConflict error.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Internal wraps an underlying fault with a caller-facing message.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the classification of err; unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
