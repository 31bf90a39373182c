package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/finshare-ai/internal/common"
)

// maxErrorBody bounds how much of a provider error body ends up in messages.
const maxErrorBody = 512

// statusError maps a non-200 provider reply onto the retry taxonomy: rate
// limits and server faults are retried, other client errors are not.
func statusError(provider string, resp *http.Response, body []byte) error {
	status := resp.StatusCode
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	err := fmt.Errorf("%s API error (status %d): %s", provider, status, string(body))

	switch {
	case status == http.StatusTooManyRequests:
		return &common.RetryableError{
			Err:        fmt.Errorf("%w: %w", common.ErrRateLimit, err),
			Retryable:  true,
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	case status >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

// retryAfter reads a Retry-After header given in seconds. HTTP-date values
// and garbage yield zero, leaving the wait to the retry policy.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
