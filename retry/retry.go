package retry

import (
	"context"
	"errors"
	"time"
)

// Config controls [Do].
type Config struct {
	// MaxAttempts counts the first call. Values <= 1 mean no retries.
	MaxAttempts int

	// BaseDelay is the delay before the first retry, doubled on each
	// following one.
	BaseDelay time.Duration

	// MaxDelay caps the delay. Zero means no cap.
	MaxDelay time.Duration

	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64

	// Retryable decides whether err is worth another attempt. When nil every
	// error except a context error is retried.
	Retryable func(error) bool

	// OnRetry, if set, is called before sleeping.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (c Config) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if c.Retryable == nil {
		return true
	}
	return c.Retryable(err)
}

// Do calls fn until it succeeds, returns a non-retryable error or
// cfg.MaxAttempts is reached. The last error is returned as is. A done ctx
// ends the wait between attempts with ctx.Err().
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	for i := range attempts {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if i == attempts-1 || !cfg.retryable(err) {
			return zero, err
		}

		delay := backoff(cfg, i)
		if cfg.OnRetry != nil {
			cfg.OnRetry(i+1, err, delay)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, nil
}
