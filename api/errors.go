package api

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	// No session at all; the UI should prompt a login.
	KindAuthRequired ErrorKind = "AUTH_REQUIRED"
	// Session present but the role or ownership check failed.
	KindNotAuthorized ErrorKind = "NOT_AUTHORIZED"
	// The backend rejected the input; its message is shown verbatim.
	KindValidation ErrorKind = "VALIDATION"
	// Network failure or an unexpected server error.
	KindTransport ErrorKind = "TRANSPORT"
)

// Error is the single failure type crossing the adapter boundary. Stores
// classify on StatusCode and render Message via MessageOr.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthRequired
	case http.StatusForbidden:
		return KindNotAuthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindTransport
	}
}

// AuthRequired reports whether the call failed with HTTP 401.
func AuthRequired(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// NotAuthorized reports whether the call failed with HTTP 401 or 403. The
// admin and order-detail endpoints treat both as an authorization failure.
func NotAuthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// StatusCode extracts the HTTP status from an adapter error, or 0 when the
// failure never produced a response.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// MessageOr returns the backend-supplied message, or fallback when the
// backend sent none (or the failure was transport-level).
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
