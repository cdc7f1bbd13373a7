// Package apperr provides the error taxonomy shared by the pipeline stages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for propagation and metrics.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInput is malformed or incomplete input data (metadata, timestamps, messages).
	KindInput
	// KindConfig is a deployment or layout problem that no redelivery can fix.
	KindConfig
	// KindAccessDenied is a permission failure reported by a collaborator.
	KindAccessDenied
	// KindCollaborator is any other storage, model or queue failure.
	KindCollaborator
)

// String returns the metric label for the kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindConfig:
		return "config"
	case KindAccessDenied:
		return "access_denied"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

// Error is the base error type with a kind, the failing operation and a cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := e.Message
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error without a cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err. A nil err yields nil.
func Wrap(err error, kind Kind, op, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: msg, Cause: err}
}

// KindOf returns the kind of the outermost *Error in the chain that is not
// KindUnknown. Errors outside the taxonomy are collaborator failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		var ae *Error
		if !errors.As(e, &ae) {
			break
		}
		if ae.Kind != KindUnknown {
			return ae.Kind
		}
		e = ae
	}
	return KindCollaborator
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
