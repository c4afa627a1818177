package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/vuequest/internal/metrics"
)

// RetryProvider retries transient provider failures with exponential
// backoff and jitter. Malformed output is retried once; everything the
// normalizer cannot repair falls through to the caller's fallback.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic. MaxAttempts below 1 is
// treated as a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	invalidRetried := false

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		switch classify(err) {
		case failurePermanent:
			return nil, err
		case failureMalformed:
			if invalidRetried {
				return nil, err
			}
			invalidRetried = true
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		metrics.LLMRetries.WithLabelValues(string(PurposeFrom(ctx))).Inc()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoff(attempt, err)):
		}
	}

	return nil, lastErr
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

type failureClass int

const (
	failureTransient failureClass = iota
	failureMalformed
	failurePermanent
)

func classify(err error) failureClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return failurePermanent
	}

	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return failurePermanent
	}

	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		return failureMalformed
	}

	// Rate limits, unavailability and plain network errors.
	return failureTransient
}

// IsTransient reports whether err is worth retrying later.
func IsTransient(err error) bool {
	return err != nil && classify(err) == failureTransient
}

func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
