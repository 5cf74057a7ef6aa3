package services

import (
	"context"
	"time"
)

// retryWithBackoff retries operation with exponential backoff: baseDelay,
// 2*baseDelay, 4*baseDelay, ... Retrying an embedding call is safe because
// it is a pure function of the input text. Returns the last error when all
// attempts fail, or the context error if cancelled while waiting.
func retryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		delay := baseDelay << (attempt - 1)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
