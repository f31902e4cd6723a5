package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/go-github/v81/github"
)

const (
	// callTimeout bounds every individual collaborator call. Exceeding it is
	// treated like any other transient failure: skip and continue, never
	// block the scan indefinitely.
	callTimeout = 30 * time.Second

	// retryDelay is the fixed pause before the single retry of a transient
	// failure.
	retryDelay = 2 * time.Second

	// retryAttempts is the total number of tries: the original call plus
	// exactly one retry.
	retryAttempts = 2
)

// withRetry runs fn under the per-call timeout, retrying once after a fixed
// delay when the failure is transient (rate limit, abuse detection, server
// error, timeout). Non-transient failures return immediately.
func withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, callTimeout)
			defer cancel()
			return fn(callCtx)
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
	)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusForbidden, http.StatusTooManyRequests:
			return true
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
