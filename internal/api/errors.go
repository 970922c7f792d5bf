package api

import (
	"errors"
	"fmt"
)

// Failure classes for every call. All three are logged and surfaced the same
// way; they are distinguished so callers can word the error line.
var (
	ErrTransport = errors.New("transport failure")
	ErrMalformed = errors.New("malformed response")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// Describe returns a short label for err's failure class.
func Describe(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return fmt.Sprintf("server error %d", se.Code)
	case errors.Is(err, ErrMalformed):
		return "malformed response"
	case errors.Is(err, ErrTransport):
		return "network error"
	default:
		return "error"
	}
}
