package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRateLimited is wrapped by errors caused by an exhausted GitHub rate limit.
var ErrRateLimited = errors.New("github api rate limit exceeded")

// HTTPStatusError is produced by the transport for any non-2xx response.
type HTTPStatusError struct {
	StatusCode  int
	Body        string
	RateLimited bool
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// RemoteQueryError reports a failed query against the GitHub API.
// Status is 0 when the failure was not an HTTP status (e.g. a GraphQL error).
type RemoteQueryError struct {
	Operation string
	Status    int
	Err       error
}

func (e *RemoteQueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed (status %d): %v", e.Operation, e.Status, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *RemoteQueryError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the credential was rejected.
func (e *RemoteQueryError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// MalformedResponseError reports a response shape that cannot be interpreted.
type MalformedResponseError struct {
	Operation string
	Reason    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Operation, e.Reason)
}

// IsUnauthorized reports whether err was caused by an HTTP 401.
func IsUnauthorized(err error) bool {
	var qe *RemoteQueryError
	return errors.As(err, &qe) && qe.Unauthorized()
}

// queryError classifies an error returned by the GraphQL or REST client.
// Context errors are returned unchanged.
func queryError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		qe := &RemoteQueryError{Operation: op, Status: statusErr.StatusCode, Err: statusErr}
		if statusErr.RateLimited {
			qe.Err = fmt.Errorf("%w: %v", ErrRateLimited, statusErr)
		}
		return qe
	}

	// GraphQL-level rate limiting is reported with HTTP 200 and an error body.
	if strings.Contains(strings.ToLower(err.Error()), "rate limit") {
		return &RemoteQueryError{Operation: op, Err: fmt.Errorf("%w: %v", ErrRateLimited, err)}
	}
	return &RemoteQueryError{Operation: op, Err: err}
}
