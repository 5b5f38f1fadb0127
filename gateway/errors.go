package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched by a StatusError carrying 404.
var ErrNotFound = errors.New("gateway: not found")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response. Message holds the body's "error" field when present.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: unexpected status %s: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %s", e.Op, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
