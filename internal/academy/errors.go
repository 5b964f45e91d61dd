package academy

import (
	"errors"
	"fmt"
	"strings"
)

// TransportError reports a network failure talking to the academy API
type TransportError struct {
	Accion string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("academy %s: transport error: %v", e.Accion, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response from the academy API
type HTTPError struct {
	Accion     string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = "<empty body>"
	}
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("academy %s: http %d: %s", e.Accion, e.StatusCode, body)
}

// HTTPStatusCode returns the upstream status code
func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

// APIError reports a response whose status field is not "success"
type APIError struct {
	Accion  string
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("academy %s: status %q: %s", e.Accion, e.Status, e.Message)
	}
	return fmt.Sprintf("academy %s: status %q", e.Accion, e.Status)
}

// DecodeError reports a response body that is not the expected JSON
type DecodeError struct {
	Accion string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("academy %s: malformed response: %v", e.Accion, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Describe collapses any academy error into one human-readable message
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var transportErr *TransportError
	var httpErr *HTTPError
	var apiErr *APIError
	var decodeErr *DecodeError

	switch {
	case errors.As(err, &transportErr):
		return "could not reach the academy server"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("academy server responded with HTTP %d", httpErr.StatusCode)
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "academy server reported an error"
	case errors.As(err, &decodeErr):
		return "academy server returned an unexpected response"
	}
	return err.Error()
}

// IsUpstream reports whether err came from talking to the academy API
func IsUpstream(err error) bool {
	var transportErr *TransportError
	var httpErr *HTTPError
	var apiErr *APIError
	var decodeErr *DecodeError
	return errors.As(err, &transportErr) ||
		errors.As(err, &httpErr) ||
		errors.As(err, &apiErr) ||
		errors.As(err, &decodeErr)
}
