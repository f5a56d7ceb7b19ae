// Package apperr defines the typed errors returned by the factoring core.
// Every error carries a Kind (how callers should react), a stable Code and a
// Spanish message suitable for end users.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidTransition
	KindValidation
	KindPolicyViolation
	KindConflict
	KindUpstream
)

var kindNames = map[Kind]string{
	KindInternal:          "internal",
	KindNotFound:          "not_found",
	KindInvalidTransition: "invalid_transition",
	KindValidation:        "validation",
	KindPolicyViolation:   "policy_violation",
	KindConflict:          "conflict",
	KindUpstream:          "upstream_failure",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the concrete error type of the core.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Fields holds per-field validation messages.
	Fields map[string]string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches another *Error by kind, and by code when the target has one, so
// the kind sentinels below match every error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Kind sentinels for errors.Is.
var (
	ErrInternal          = &Error{Kind: KindInternal}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrPolicyViolation   = &Error{Kind: KindPolicyViolation}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrUpstream          = &Error{Kind: KindUpstream}
)

// New builds an error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds an error around cause.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, cause: cause}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err; untyped errors are internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code of err, or CodeInternal.
func CodeOf(err error) string {
	if e, ok := As(err); ok && e.Code != "" {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the user-facing message of err. Untyped errors never leak
// their text.
func MessageOf(err error) string {
	if e, ok := As(err); ok && e.Message != "" {
		return e.Message
	}
	return msgInternal
}
