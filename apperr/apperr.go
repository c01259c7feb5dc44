// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	// Internal is an unexpected failure; details stay server-side.
	Internal Kind = iota
	// NotFound means an id did not resolve to a stored record.
	NotFound
	// Validation means the request was malformed or missing required fields.
	Validation
	// Unauthorized means the caller lacks a valid credential.
	Unauthorized
	// Conflict means the update lost an optimistic-concurrency or state race.
	Conflict
	// InvalidReference means a referenced sub-resource no longer exists.
	InvalidReference
	// Upstream means a probe or inference target was unreachable or timed out.
	Upstream
)

// Error wraps an operation, a caller-facing message, and an underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap constructs an Error with an underlying cause.
func Wrap(kind Kind, op, msg string, err error) error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, defaulting to Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the caller-facing message, or a generic one for unexpected errors.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
