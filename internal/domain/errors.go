package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrExpired        = errors.New("expired")
	ErrMismatch       = errors.New("mismatch")
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrInternal       = errors.New("internal error")
)

// Error pairs a sentinel kind with the message shown to the caller.
// The wrapped cause stays server-side.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError builds an Error of the given kind with a caller-facing message.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError is NewError with an underlying cause attached.
func WrapError(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
