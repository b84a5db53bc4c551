package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/biyahe-app/biyahe/internal/pkg/logger"
)

// RetryableFunc represents a function that can be retried
type RetryableFunc func(ctx context.Context) error

// Config holds retry configuration. The delay is fixed; heartbeats and
// location publishes are idempotent, so there is no need for exponential
// growth and the short fixed backoff keeps recovery time bounded.
type Config struct {
	MaxRetries int           // attempts after the first failure
	Delay      time.Duration // fixed delay between attempts
}

// DefaultConfig returns a default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		Delay:      5 * time.Second,
	}
}

// Fixed executes fn, retrying failed attempts with a fixed delay until it
// succeeds, the attempts run out, or the context is cancelled.
func Fixed(ctx context.Context, cfg Config, op string, fn RetryableFunc) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retry",
					logger.String("op", op),
					logger.Int("attempt", attempt+1))
			}
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxRetries {
			break
		}

		logger.Warn("Operation failed, retrying",
			logger.String("op", op),
			logger.Err(err),
			logger.Int("attempt", attempt+1),
			logger.Duration("delay", cfg.Delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, cfg.MaxRetries+1, lastErr)
}
