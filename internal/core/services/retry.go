package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/logger"
)

// maxRetryDelay caps the exponential backoff between attempts.
const maxRetryDelay = 5 * time.Second

// withRetry calls fn until it succeeds, fails with a non-transient error or
// runs out of retries. Only domain.ErrTransientIO and per-attempt timeouts
// are retried. The delay starts at backoff and doubles per attempt.
func withRetry(ctx context.Context, retries int, backoff time.Duration, fn func(context.Context) error) error {
	delay := backoff
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= retries || !retryable(ctx, err) {
			return err
		}

		logger.Warn("Attempt %d failed, retrying in %s: %v", attempt+1, delay, err)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return errors.Is(err, domain.ErrTransientIO) || errors.Is(err, context.DeadlineExceeded)
}
