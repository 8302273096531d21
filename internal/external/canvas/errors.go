package canvas

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned when Canvas rejects access to a resource
var ErrUnauthorized = errors.New("canvas: unauthorized")

// StatusError is a non-200 Canvas response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("canvas: unexpected status code %d", e.StatusCode)
	}
	return fmt.Sprintf("canvas: unexpected status code %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps 401 to ErrUnauthorized so callers can use errors.Is
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

func newStatusError(code int, body []byte) error {
	return &StatusError{StatusCode: code, Body: strings.TrimSpace(string(body))}
}
