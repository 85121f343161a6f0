package gateway

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const maxErrorBody = 4096

// statusTransport turns non-2xx responses into *HTTPStatusError so that the
// status survives the GraphQL client, which only reports it as text.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Body:        strings.TrimSpace(string(body)),
		RateLimited: isRateLimited(resp),
	}
}

func isRateLimited(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.Header.Get("Retry-After") != ""
	}
	return false
}

// newTransport builds the authenticated transport chain:
// oauth2 -> status classification -> secondary rate limit waiter -> base.
// The waiter sleeps at most maxWait for a single secondary limit; beyond that
// the limited response is passed through and surfaces as ErrRateLimited.
func newTransport(token string, base http.RoundTripper, maxWait time.Duration, logger *logrus.Logger) (http.RoundTripper, error) {
	if base == nil {
		base = http.DefaultTransport
	}
	waiter, err := github_ratelimit.NewRateLimitWaiter(base,
		github_ratelimit.WithSingleSleepLimit(maxWait, func(cb *github_ratelimit.CallbackContext) {
			entry := logger.WithField("max_wait", maxWait)
			if cb.Request != nil {
				entry = entry.WithField("path", cb.Request.URL.Path)
			}
			if cb.SleepUntil != nil {
				entry = entry.WithField("sleep_until", cb.SleepUntil.Format(time.RFC3339))
			}
			entry.Warn("Secondary rate limit exceeds the configured wait, giving up")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &oauth2.Transport{
		Base:   &statusTransport{base: waiter},
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
	}, nil
}
