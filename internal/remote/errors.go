package remote

import (
	"fmt"
	"net/http"

	"github.com/juju/errors"
)

// DependencyError is returned when a call to a partner service failed for
// good: its retries were exhausted or the partner answered with a
// non-retryable status.
type DependencyError struct {
	Service    string
	Operation  string
	Attempts   int
	StatusCode int
	Cause      error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %v", e.Service, e.Operation, e.Attempts, e.Cause)
}

// Summary describes the failure without the partner's response body.
func (e *DependencyError) Summary() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed after %d attempt(s) with status %d", e.Service, e.Operation, e.Attempts, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed after %d attempt(s)", e.Service, e.Operation, e.Attempts)
}

func (e *DependencyError) Unwrap() error {
	return e.Cause
}

// IsDependencyError reports whether err carries a DependencyError.
func IsDependencyError(err error) bool {
	var depErr *DependencyError
	return errors.As(err, &depErr)
}

// StatusError is a non-2xx answer from a partner service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// StatusCode returns the HTTP status carried by err, or 0 when the failure
// happened before a response was received.
func StatusCode(err error) int {
	var depErr *DependencyError
	if errors.As(err, &depErr) && depErr.StatusCode != 0 {
		return depErr.StatusCode
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsRetryable is the default retry predicate: transport failures, 5xx and 429
// are worth another attempt, every other status is final.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return true
	}
	return statusErr.StatusCode >= http.StatusInternalServerError ||
		statusErr.StatusCode == http.StatusTooManyRequests
}
