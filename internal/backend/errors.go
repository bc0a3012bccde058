package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a backend client failure.
type Kind string

const (
	// KindTransport covers network failures where no response was received.
	KindTransport Kind = "transport"
	// KindServer covers non-2xx responses with a parsed message.
	KindServer Kind = "server"
	// KindMalformed covers 2xx responses whose body is not the expected JSON,
	// including a create response missing every known id field.
	KindMalformed Kind = "malformed_response"
	// KindTimeout covers request deadlines and the poll ceiling.
	KindTimeout Kind = "timeout"
	// KindValidation covers client-side precondition failures that never reach
	// the wire.
	KindValidation Kind = "validation"
)

// Sentinels usable with errors.Is regardless of the carried message.
var (
	ErrTransport         = errors.New("transport failure")
	ErrServer            = errors.New("server error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrTimeout           = errors.New("timeout")
	ErrValidation        = errors.New("validation failed")
)

// Error is the typed failure returned by every client operation.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is maps each kind onto its sentinel.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrServer:
		return e.Kind == KindServer
	case ErrMalformedResponse:
		return e.Kind == KindMalformed
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "network error contacting backend", Err: err}
}

func timeoutError(message string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: message, Err: err}
}

func serverError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("Server error: %d", status)
	}
	return &Error{Kind: KindServer, Status: status, Message: message}
}

func malformedError(message string, err error) *Error {
	return &Error{Kind: KindMalformed, Message: message, Err: err}
}

// ValidationError builds a client-side precondition failure.
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// UserMessage extracts a display string from any error, preferring the
// backend-supplied message when one is present.
func UserMessage(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
