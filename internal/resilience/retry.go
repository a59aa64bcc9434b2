package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls retry behavior. Backoff grows linearly with the
// attempt number; 429 cooldowns escalate separately and do not consume an
// attempt.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (including the first try).
	// A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// BaseDelay scales both the linear backoff (BaseDelay * attempt) and the
	// rate-limit cooldown. Default: 2s.
	BaseDelay time.Duration

	// OnRetry is called before each backoff sleep with attempt number and error.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the retry policy used against GOV.UK.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 2 * time.Second
	}
	return cfg
}

// backoff returns the sleep before retry n (1-based): BaseDelay * n.
func (c RetryConfig) backoff(attempt int) time.Duration {
	return c.BaseDelay * time.Duration(attempt)
}

// cooldown returns the wait after the nth consecutive 429 (0-based).
func (c RetryConfig) cooldown(hit int) time.Duration {
	return c.BaseDelay * time.Duration(hit+2) * 3
}

// DoVal executes fn with retry logic and preserves the value from the
// successful call. Error handling follows the fetch taxonomy:
//
//   - NotFoundError returns immediately: absence is definitive.
//   - RateLimitedError sleeps an escalating cooldown and retries without
//     consuming an attempt.
//   - Transient errors retry with linear backoff until MaxAttempts.
//   - Any other error returns immediately.
//
// Context cancellation stops retries and returns the last error.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	var zero T
	var lastErr error
	rateLimitHits := 0

	for attempt := 0; attempt < cfg.MaxAttempts; {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}

		if IsNotFound(err) {
			return zero, err
		}

		if IsRateLimited(err) {
			wait := cfg.cooldown(rateLimitHits)
			rateLimitHits++
			zap.L().Warn("rate limited, cooling down",
				zap.Duration("wait", wait),
				zap.Int("hit", rateLimitHits),
			)
			if !sleep(ctx, wait) {
				return zero, lastErr
			}
			continue // no attempt consumed
		}

		if !IsTransient(err) {
			return zero, err
		}

		attempt++
		if attempt >= cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
		if !sleep(ctx, cfg.backoff(attempt)) {
			return zero, lastErr
		}
	}

	return zero, lastErr
}

// Do executes fn with the same retry semantics as DoVal.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// sleep waits for d or until ctx is done; it reports whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
