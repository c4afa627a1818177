package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is model output that is empty or fails its schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures, server errors and a
// missing provider.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a structured response cut off by its budget.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrNoProvider is returned by generators when no model is configured.
var ErrNoProvider = &ErrProviderUnavailable{Err: errors.New("no provider configured")}

// fromStatus maps an SDK error carrying an HTTP status to a typed error.
func fromStatus(status int, retryAfter string, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: parseRetryAfter(retryAfter), Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// parseRetryAfter reads the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Reason names the failure class of err for fallback logs and metrics:
// "no_provider", "rate_limited", "unavailable", "truncated", "invalid",
// "canceled" or "other".
func Reason(err error) string {
	var (
		rl      *ErrRateLimit
		unavail *ErrProviderUnavailable
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoProvider):
		return "no_provider"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &maxTok):
		return "truncated"
	case errors.As(err, &invalid):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &unavail):
		return "unavailable"
	default:
		return "other"
	}
}
