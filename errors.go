package timecheck

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidServerTimestamp = errors.New("invalid server timestamp")
	ErrInvalidClientTimestamp = errors.New("invalid client timestamp")
	ErrSkip                   = errors.New("no update")
)

// InvalidServerTimestampError means the resource does not carry a usable
// timestamp in the configured field. This is a server-side defect.
type InvalidServerTimestampError struct {
	Field string
	// Value is what the resource returned, nil if the field is absent.
	Value any
	Err   error
}

func (e *InvalidServerTimestampError) Error() string {
	msg := fmt.Sprintf("InvalidServerDatetimeField: %s is not a valid datetime. %v is a %T", e.Field, e.Value, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidServerTimestampError) Is(target error) bool {
	return target == ErrInvalidServerTimestamp
}

func (e *InvalidServerTimestampError) Unwrap() error {
	return e.Err
}

func (e *InvalidServerTimestampError) StatusCode() int {
	return http.StatusInternalServerError
}

// InvalidClientTimestampError means the client sent a value that cannot be
// parsed with the configured format.
type InvalidClientTimestampError struct {
	Field string
	// Source is "header" or "body".
	Source string
	Raw    string
	Format string
	Err    error
}

func (e *InvalidClientTimestampError) Error() string {
	return fmt.Sprintf("InvalidClientDatetimeField: %s %s %q is unable to be parsed with %s", e.Field, e.Source, e.Raw, e.Format)
}

func (e *InvalidClientTimestampError) Is(target error) bool {
	return target == ErrInvalidClientTimestamp
}

func (e *InvalidClientTimestampError) Unwrap() error {
	return e.Err
}

func (e *InvalidClientTimestampError) StatusCode() int {
	return http.StatusBadRequest
}

// SkipSignal is not a failure: it tells the boundary that no further
// processing is needed and which status code to answer with.
type SkipSignal struct {
	Verb    Verb
	Code    int
	Message string
}

func newSkipSignal(verb Verb, code int) *SkipSignal {
	var msg string
	switch verb {
	case VerbWrite:
		msg = "NoUpdate: Client has submitted older data than the server. Skipping update"
	case VerbRead:
		msg = "NoUpdate: Client is already up to date"
	default:
		msg = "NoUpdate"
	}
	return &SkipSignal{Verb: verb, Code: code, Message: msg}
}

func (s *SkipSignal) Error() string {
	return s.Message
}

func (s *SkipSignal) Is(target error) bool {
	return target == ErrSkip
}

func (s *SkipSignal) StatusCode() int {
	return s.Code
}

// StatusCode returns the HTTP status code an error maps to.
// Errors without a status code are internal server errors.
func StatusCode(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
