package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_prasad/internal/session"
)

// ErrUnauthenticated is returned before any call when the session has no
// usable token, and for 401/403 replies.
var ErrUnauthenticated = session.ErrUnauthenticated

// APIError is a reply the backend chose to send: a non-2xx status or a body
// with success=false. Message is the backend's own wording.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// TransportError means the backend could not be reached at all: network
// failure, timeout, or the circuit breaker refusing the call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
