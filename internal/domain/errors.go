package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error for the transport layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindInvalidState
	KindStoreFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindStoreFailure:
		return "store_failure"
	default:
		return "unknown"
	}
}

// Error is the error type returned by services and the ledger store.
// Message is safe to show to API callers; Err carries the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// StoreFailure wraps a driver or connectivity error. The message shown to clients stays generic.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindStoreFailure, Message: op, Err: err}
}

// KindOf returns the Kind of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a domain error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
