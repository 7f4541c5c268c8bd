package gateway

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/trainer/internal/core"
)

// RequestError describes a failed backend call: either a transport error
// (Err set, Status 0) or a non-success status.
type RequestError struct {
	Method string
	URL    string
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s: HTTP %d %s", e.Method, e.URL, core.ErrRequestFailed, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, core.ErrRequestFailed, e.Err)
}

// Unwrap exposes both the uniform failure sentinel and the transport cause.
func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{core.ErrRequestFailed}
	}
	return []error{core.ErrRequestFailed, e.Err}
}

// StatusCode returns the HTTP status, or 0 for transport failures.
func (e *RequestError) StatusCode() int {
	return e.Status
}

// NotFound reports whether the backend answered 404.
func (e *RequestError) NotFound() bool {
	return e.Status == http.StatusNotFound
}
