package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Logger      *Logger
}

// Do executes fn with exponential back-off retry logic.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	maxDelay := r.MaxDelay
	if maxDelay <= 0 {
		maxDelay = time.Minute
	}

	err := retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(r.BaseDelay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if r.Logger != nil {
				r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v", operationName, n+1, attempts, err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, err)
	}
	return nil
}
