package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig bounds the retry helper.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns three attempts starting at 100ms and capped at 2s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Permanent marks err as not retryable. Client-class failures (4xx) must be wrapped with it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var permanent *backoff.PermanentError
	return errors.As(err, &permanent)
}

// Retry runs op with exponential backoff and jitter until it succeeds, returns a permanent
// error, exhausts MaxAttempts or ctx is done. The returned error is the last one produced by op,
// with any Permanent marker removed.
func Retry(ctx context.Context, config RetryConfig, op func(context.Context) error) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}

	expBackoff := backoff.NewExponentialBackOff()
	if config.InitialInterval > 0 {
		expBackoff.InitialInterval = config.InitialInterval
	}
	if config.MaxInterval > 0 {
		expBackoff.MaxInterval = config.MaxInterval
	}
	expBackoff.MaxElapsedTime = 0

	policy := backoff.WithContext(
		backoff.WithMaxRetries(expBackoff, uint64(config.MaxAttempts-1)),
		ctx,
	)

	return backoff.Retry(func() error {
		return op(ctx)
	}, policy)
}
