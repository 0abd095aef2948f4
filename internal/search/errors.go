package search

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnavailable reports that the cluster could not be reached at all:
// dial failures, timeouts, or a response that could not be read.
var ErrUnavailable = errors.New("search backend unavailable")

// BackendError reports a request the cluster answered with a non-2xx
// status.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a backend index-not-found response.
// Callers treat it as a successful empty result, not a failure.
func IsNotFound(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr) && backendErr.StatusCode == http.StatusNotFound
}

// errorBodyLimit bounds how much of a failed response lands in the error.
const errorBodyLimit = 512

func truncateBody(data []byte) string {
	if len(data) > errorBodyLimit {
		return string(data[:errorBodyLimit]) + "..."
	}
	return string(data)
}
