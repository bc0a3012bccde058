package backend

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a client error to the status the gateway should relay.
// Upstream 4xx/5xx codes are passed through when the error carries one.
func HTTPStatus(err error) int {
	var be *Error
	if errors.As(err, &be) && be.Status >= 400 {
		return be.Status
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, ErrServer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the machine-readable code for a client error.
func ErrorCode(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return string(be.Kind)
	}
	return "internal"
}
