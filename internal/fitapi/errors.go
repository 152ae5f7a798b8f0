package fitapi

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the session is invalid and the user has to
	// re-authenticate. Must never be shown as a generic error.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is a valid-but-empty result, distinct from a failure.
	ErrNotFound = errors.New("not found")
)

// APIError is a transient backend or network failure for a single call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fit api error [%d]: %s", e.StatusCode, e.Message)
}
