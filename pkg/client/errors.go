package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned after the API rejected the stored credential.
// By the time a caller sees it the credential has been cleared and the
// unauthorized handler has run, so callers should not display it.
var ErrUnauthorized = errors.New("session expired, please log in again")

// TransportError means the request never produced a structured answer: the
// network failed, the body could not be read, or a response had no envelope.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int // 0 when no response arrived
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is a structured rejection surfaced as an error, for operations
// whose success value is not an envelope (CSV export) and for callers that
// prefer errors over inspecting Envelope.Success.
type HTTPError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if len(e.Errors) > 0 {
		msg = strings.Join(e.Errors, "; ")
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// IsStatus returns true if err (or any wrapped error) carries the given HTTP status code.
func IsStatus(err error, code int) bool {
	if code == http.StatusUnauthorized && errors.Is(err, ErrUnauthorized) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode == code
	}
	return false
}
