package serrors

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category. Only NewKind creates kinds, so an
// errors.As(err, &kind) check never matches an arbitrary error.
type Kind interface {
	error
	isKind()
}

type kind struct{ name string }

func (k kind) Error() string { return k.name }
func (k kind) isKind()       {}

// NewKind returns a new kind sentinel.
func NewKind(name string) Kind { return kind{name: name} }

// Default kinds cover the failures the calculator service reports to its
// callers. Each one maps to a single HTTP status in the API layer.
var (
	// ErrNotFound indicates the requested session does not exist, has expired or
	// belongs to another user.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrUnauthorized indicates missing or invalid authentication.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrBadRequest indicates the client sent invalid data, e.g. an unknown key.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrInternal indicates an internal server error.
	ErrInternal = NewKind("INTERNAL")
	// ErrTimeout indicates the operation timed out.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrUnavailable indicates the service cannot take more work right now,
	// e.g. the session limit was reached.
	ErrUnavailable = NewKind("UNAVAILABLE")
)

// Error is an error tagged with a Kind. It may carry a cause and a message
// meant for the caller. errors.Is and errors.As see both the kind and the
// cause chain.
//
// The text is "<msg>: <cause>", or whichever of the two is set, or the kind
// name when neither is.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With returns an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap is With plus a cause.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly returns a bare error of kind k.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		if e.kind != nil {
			return e.kind.Error()
		}

		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the kind of e or matches its cause.
func (e *Error) Is(target error) bool {
	switch {
	case e == nil || target == nil:
		return e == nil && target == nil
	case e.kind != nil && errors.Is(e.kind, target):
		return true
	default:
		return e.err != nil && errors.Is(e.err, target)
	}
}

func (e *Error) As(target any) bool {
	switch {
	case e == nil || target == nil:
		return false
	case e.kind != nil && errors.As(e.kind, target):
		return true
	default:
		return e.err != nil && errors.As(e.err, target)
	}
}

func (e *Error) Kind() Kind      { return e.kind }
func (e *Error) Message() string { return e.msg }
func (e *Error) Cause() error    { return e.err }

// KindOf returns the semantic kind carried anywhere in err's chain, or nil when
// err carries none. A bare Kind sentinel is its own kind.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}

// MessageOf returns the message of the outermost semantic error in err's chain,
// or "" when there is none or it has no message.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}

	return ""
}
