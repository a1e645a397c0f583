package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindInvalidID
	KindUpstream
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidID:
		return "invalid_id"
	case KindUpstream:
		return "upstream"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func InvalidID(id string) error {
	return &Error{Kind: KindInvalidID, Msg: fmt.Sprintf("invalid id %q", id)}
}

func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

// Store wraps an unexpected persistence failure. Errors that already carry
// a kind are returned unchanged.
func Store(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindStore, Msg: msg, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Message returns the public message for err. Store and unknown errors are
// reduced to a generic text.
func Message(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return "internal server error"
	}
	if ae.Kind == KindStore || ae.Kind == KindUnknown {
		return "internal server error"
	}
	return ae.Msg
}
