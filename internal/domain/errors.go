package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnavailable  = errors.New("service unavailable")
)

// Error pairs a user-facing message with a sentinel so handlers can both
// pick a status code via errors.Is and show the message verbatim.
type Error struct {
	Sentinel error
	Message  string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Sentinel }

// E builds an Error wrapping the given sentinel.
func E(sentinel error, message string) error {
	return &Error{Sentinel: sentinel, Message: message}
}
