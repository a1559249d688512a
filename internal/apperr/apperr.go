// Package apperr defines the closed set of error kinds reported by the
// family graph engine.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of an engine error.
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindNotFound            Kind = "NOT_FOUND"
	KindEndpointNotFound    Kind = "ENDPOINT_NOT_FOUND"
	KindSelfRelation        Kind = "SELF_RELATION"
	KindCardinalityExceeded Kind = "CARDINALITY_EXCEEDED"
	KindForbiddenPair       Kind = "FORBIDDEN_PAIR"
	KindUnknownCategory     Kind = "UNKNOWN_CATEGORY"
	KindDuplicateRelation   Kind = "DUPLICATE_RELATION"
	KindStorage             Kind = "STORAGE_ERROR"
)

// Sentinels for errors.Is. They carry only a kind.
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrEndpointNotFound    = &Error{Kind: KindEndpointNotFound}
	ErrSelfRelation        = &Error{Kind: KindSelfRelation}
	ErrCardinalityExceeded = &Error{Kind: KindCardinalityExceeded}
	ErrForbiddenPair       = &Error{Kind: KindForbiddenPair}
	ErrUnknownCategory     = &Error{Kind: KindUnknownCategory}
	ErrDuplicateRelation   = &Error{Kind: KindDuplicateRelation}
	ErrStorage             = &Error{Kind: KindStorage}
)

// Error is a tagged engine error.
type Error struct {
	Kind    Kind           `json:"kind"`
	Op      string         `json:"op,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// New creates an error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf is New with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return New(kind, op, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithCause sets the underlying cause.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithDetail attaches a key/value detail.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Storage wraps a storage failure. Errors that already carry a kind pass
// through untouched so rule violations found inside a transaction keep theirs.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return New(KindStorage, op, "storage engine failure").WithCause(err)
}

// KindOf returns the kind of err, or "" when err is not an engine error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
