// Package oriorerr defines the closed set of error kinds produced by the
// catalog, binder, planner, and copy pipeline.
package oriorerr

import (
	"errors"
	"fmt"
)

// Kind is one of the fixed categories callers are expected to switch on.
type Kind int

const (
	Binder Kind = iota
	Catalog
	NotImplemented
	IO
	ParseData
	KeyNotFound
	CorruptCatalog
	VersionMismatch
)

func (k Kind) String() string {
	switch k {
	case Binder:
		return "Binder"
	case Catalog:
		return "Catalog"
	case NotImplemented:
		return "NotImplemented"
	case IO:
		return "IO"
	case ParseData:
		return "ParseData"
	case KeyNotFound:
		return "KeyNotFound"
	case CorruptCatalog:
		return "CorruptCatalog"
	case VersionMismatch:
		return "VersionMismatch"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a Kind and, for Binder/Catalog
// errors, a short machine-checkable Code (e.g. "Duplicate", "InvalidPk").
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		if e.Message != "" {
			return fmt.Sprintf("%s{%s}: %s", e.Kind, e.Code, e.Message)
		}
		return fmt.Sprintf("%s{%s}", e.Kind, e.Code)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with a message, no code, no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCode builds an *Error carrying a Code, the stable identifier tests
// and callers match on (e.g. Binder{InvalidPk}).
func WithCode(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Wrap attaches a Kind/Code to an underlying cause while preserving it for
// errors.Unwrap / errors.Is.
func Wrap(kind Kind, code string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: cause.Error(), Cause: cause}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsCode reports whether err is an *Error of the given Kind and Code.
func IsCode(err error, kind Kind, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind && e.Code == code
	}
	return false
}
