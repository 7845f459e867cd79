package mpapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured indicates no API base URL has been set.
var ErrNotConfigured = errors.New("API base URL is not configured")

// ErrInvalidBaseURL indicates the configured base URL cannot be used.
var ErrInvalidBaseURL = errors.New("API base URL is invalid")

// TransportError is returned when the API could not be reached after all attempts.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("API request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string // First bytes of the response body, for logs
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status code %d", e.Code)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DecodeError is returned when a 2xx response body is not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse JSON response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err comes from missing or invalid configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrInvalidBaseURL)
}

// IsUpstreamError reports whether err was caused by the remote API.
func IsUpstreamError(err error) bool {
	var transportErr *TransportError
	var statusErr *StatusError
	var decodeErr *DecodeError
	return errors.As(err, &transportErr) || errors.As(err, &statusErr) || errors.As(err, &decodeErr)
}

func isRetryableError(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return false
}
