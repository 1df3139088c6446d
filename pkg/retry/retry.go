package retry

import (
	"context"
	"errors"
	"fmt"

	errs "tweetscraper/pkg/errors"
	"tweetscraper/pkg/logger"
)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the total number of attempts; values below 1 mean 1
	MaxAttempts int
	Backoff     BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	Logger  logger.Logger
}

// DefaultConfig returns a single-attempt configuration
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 1,
		Backoff:     DefaultExponentialBackoff(),
		RetryIf:     DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	}
}

// DefaultRetryIf retries network failures, 429 and 5xx responses
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var typed *errs.Error
	if errors.As(err, &typed) {
		if typed.Code != 0 {
			return errs.IsRetryableStatusCode(typed.Code)
		}
		return errs.IsRetryable(typed.Type)
	}
	return false
}

// Retrier runs operations under a fixed retry configuration
type Retrier struct {
	config *Config
}

// NewRetrier creates a new retrier with the given configuration
func NewRetrier(cfg *Config) *Retrier {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.Backoff == nil {
		cfg.Backoff = defaults.Backoff
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = defaults.RetryIf
	}
	if cfg.Logger == nil {
		cfg.Logger = defaults.Logger
	}
	return &Retrier{config: cfg}
}

// MaxAttempts returns the configured number of attempts
func (r *Retrier) MaxAttempts() int {
	if r.config.MaxAttempts < 1 {
		return 1
	}
	return r.config.MaxAttempts
}

// Do executes op until it succeeds, fails with a non-retryable error,
// runs out of attempts or ctx is cancelled
func (r *Retrier) Do(ctx context.Context, op func() error) error {
	maxAttempts := r.MaxAttempts()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				r.config.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		if !r.config.RetryIf(lastErr) || attempt == maxAttempts {
			break
		}

		delay := r.config.Backoff.NextDelay(attempt)
		r.config.Logger.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"error":        lastErr.Error(),
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": maxAttempts,
		})

		if err := Wait(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}

	if maxAttempts > 1 && r.config.RetryIf(lastErr) {
		return fmt.Errorf("max retry attempts (%d) exceeded: %w", maxAttempts, lastErr)
	}
	return lastErr
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](ctx context.Context, r *Retrier, op func() (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func() error {
		var opErr error
		result, opErr = op()
		return opErr
	})
	return result, err
}
