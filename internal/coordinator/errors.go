package coordinator

import (
	"errors"
	"fmt"
)

// Kind classifies coordination failures for transport mapping.
type Kind int

// Failure kinds.
const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidInput
	KindUnavailable
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Error is a classified coordination failure.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind, KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

func forbidden(op, msg string) *Error {
	return &Error{Kind: KindForbidden, Op: op, Msg: msg}
}

func notFound(op, msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg, Err: err}
}

func invalidInput(op, msg string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Msg: msg, Err: err}
}

func unavailable(op, msg string, err error) *Error {
	return &Error{Kind: KindUnavailable, Op: op, Msg: msg, Err: err}
}
