package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Error is an error with optional structured logging attributes.
// It implements error, errors.Unwrap, and slog.LogValuer.
//
// Packages declare sentinel values with [NewError] and derive enriched
// instances via [Error.Wrap] and [Error.With]. Derived instances compare
// equal to their sentinel under errors.Is.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
// If err is already an Error, it is returned unchanged.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
// Attached attributes are rendered inline so the full context survives
// even when the error is printed as a plain string.
func (e *Error) Error() string {
	var sb strings.Builder

	if e.msg != "" {
		sb.WriteString(e.msg)
	}

	if len(e.attrs) > 0 {
		sb.WriteString(" (")

		for i, a := range e.attrs {
			if i > 0 {
				sb.WriteString(", ")
			}

			fmt.Fprintf(&sb, "%s=%v", a.Key, a.Value)
		}

		sb.WriteString(")")
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target carries the same base message.
// This makes derived instances (from Wrap/With) match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.msg == t.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // attrs are shared, never mutated
	}
}

// With adds attributes to the error for structured logging.
// A new Error instance is returned to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}
