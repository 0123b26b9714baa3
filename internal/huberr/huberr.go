// Package huberr defines the hub's three-kind error taxonomy:
// Validation, NotFound, and Storage. Services return these consistently
// so callers (automation engine, HTTP adapter) can branch on Kind
// without inspecting error strings.
package huberr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for caller policy decisions.
type Kind string

const (
	// KindValidation marks a failed domain invariant.
	KindValidation Kind = "validation"
	// KindNotFound marks a lookup that found no row.
	KindNotFound Kind = "not_found"
	// KindStorage marks an opaque repository failure.
	KindStorage Kind = "storage"
)

// Error is a hub domain error carrying a Kind plus a stable identifier
// and human message. Storage errors wrap their cause but never expose
// it to external callers — only the Kind and a generic message leak out.
type Error struct {
	Kind    Kind
	Message string
	Subject string // e.g. "entity", "automation" — what the error is about
	cause   error
}

func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Subject, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As, but Storage
// causes should never be rendered to an external caller directly.
func (e *Error) Unwrap() error { return e.cause }

// Validation builds a Kind=Validation error.
func Validation(subject, message string) *Error {
	return &Error{Kind: KindValidation, Subject: subject, Message: message}
}

// Validationf builds a Kind=Validation error with a formatted message.
func Validationf(subject, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a Kind=NotFound error.
func NotFound(subject, message string) *Error {
	return &Error{Kind: KindNotFound, Subject: subject, Message: message}
}

// NotFoundf builds a Kind=NotFound error with a formatted message.
func NotFoundf(subject, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an underlying repository failure. The cause is kept for
// logging but Message is a generic, safe-to-surface description.
func Storage(subject string, cause error) *Error {
	return &Error{Kind: KindStorage, Subject: subject, Message: "internal error", cause: cause}
}

// Is reports whether err (or something it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err, or "" if err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
