package client

import "encoding/json"

// Envelope is the uniform shape of every non-binary API response.
type Envelope[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    T        `json:"data"`
	Errors  []string `json:"errors"`

	// StatusCode is the HTTP status the envelope arrived with.
	StatusCode int `json:"-"`
}

// NoData is the payload type of operations whose data is always null.
type NoData = json.RawMessage

// Outcome is implemented by every Envelope and lets Problems inspect a
// result without knowing its payload type.
type Outcome interface {
	Failure() (message string, errs []string, failed bool)
}

// Failure reports the business failure carried by e, if any. A nil envelope
// carries none.
func (e *Envelope[T]) Failure() (string, []string, bool) {
	if e == nil || e.Success {
		return "", nil, false
	}
	return e.Message, e.Errors, true
}

// Err converts a failed envelope into an *HTTPError, or nil on success.
func (e *Envelope[T]) Err() error {
	if e == nil || e.Success {
		return nil
	}
	return &HTTPError{StatusCode: e.StatusCode, Message: e.Message, Errors: e.Errors}
}
