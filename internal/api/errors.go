package api

import (
	"errors"
	"fmt"
)

// Kind classifies why a depot call failed.
type Kind int

const (
	// KindPrecondition is a local check that stopped the call before any
	// request was sent.
	KindPrecondition Kind = iota + 1
	// KindTransport means no HTTP response was received.
	KindTransport
	// KindStatus means the server answered with an unsuccessful status.
	KindStatus
	// KindDecode means the response body could not be interpreted.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call. Body holds the raw response text
// for KindStatus and KindDecode.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: HTTP error! status: %d", e.Op, e.Status)
	case KindPrecondition:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		if e.Err == nil {
			return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
		}
		return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// BodyOf returns the response text carried by err, if any.
func BodyOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// Precondition builds a KindPrecondition error for op.
func Precondition(op, msg string) *Error {
	return &Error{Kind: KindPrecondition, Op: op, Err: errors.New(msg)}
}
