package api

import (
	"context"
	"time"

	"github.com/joe/validate-sheets/pkg/errors"
)

// Exported constants.
const (
	// RetryAttempts is the maximum number of tries for a retryable call.
	RetryAttempts = 3

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay = 1 * time.Second

	// RetryMaxDelay caps the backoff.
	RetryMaxDelay = 30 * time.Second
)

// WithRetry runs fn up to RetryAttempts times with exponential backoff.
// Only recoverable network and api failures are retried; validation errors
// surface immediately since retrying cannot change the input. The client
// itself never retries - this policy belongs to callers such as the polling
// progress transport.
func WithRetry(ctx context.Context, fn func() error) error {
	delay := RetryBaseDelay

	var lastErr error

	for attempt := 1; attempt <= RetryAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		appErr := errors.AsAppError(lastErr)
		if !appErr.Recoverable || appErr.Kind == errors.KindValidation {
			return appErr
		}

		if attempt == RetryAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()

			return errors.FromTransport(ctx.Err())
		case <-timer.C:
		}

		delay *= 2
		if delay > RetryMaxDelay {
			delay = RetryMaxDelay
		}
	}

	return errors.AsAppError(lastErr)
}
