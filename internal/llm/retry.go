package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

type verdict int

const (
	giveUp verdict = iota
	retryTransient
	retryInvalid
)

// classify decides whether a failed call is worth another attempt.
// Rate limits, 5xx and network errors are transient. A schema violation
// earns one more try. Truncation, rejected requests and context errors
// are final.
func classify(err error) verdict {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return giveUp
	}
	var (
		maxTok   *ErrMaxTokensExceeded
		rejected *ErrRejected
		invalid  *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &maxTok), errors.As(err, &rejected):
		return giveUp
	case errors.As(err, &invalid):
		return retryInvalid
	}
	return retryTransient
}

// RetryProvider retries transient failures with jittered exponential
// backoff, honouring a provider's Retry-After.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidLeft := 1
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		v := classify(err)
		if v == retryInvalid {
			if invalidLeft == 0 {
				v = giveUp
			}
			invalidLeft--
		}
		if v == giveUp || attempt >= r.config.MaxAttempts {
			return nil, err
		}

		if err := sleep(ctx, r.wait(attempt, err)); err != nil {
			return nil, err
		}
	}
}

// wait is the pause after the given 1-based attempt.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	d = min(d, float64(r.config.MaxWait))
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(max(d, 0))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
