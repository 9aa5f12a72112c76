package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the completion has no choices or no content.
var ErrEmptyResponse = errors.New("llm: empty completion")

// HTTPError represents a non-2xx response from the completion endpoint.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
