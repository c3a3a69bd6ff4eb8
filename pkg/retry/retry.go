// Package retry provides bounded retry with exponential backoff for
// idempotent storage reads. Write paths must not use it blindly; a
// reaction toggle retried without a conditional check double-applies.
package retry

import (
	"context"
	"time"
)

// DefaultAttempts is the attempt budget used by the read paths.
const DefaultAttempts = 3

// Do invokes fn up to attempts times, doubling the delay between
// attempts starting from baseDelay. It returns nil on the first
// success, the last error once attempts are exhausted, or the context
// error if the context is done while waiting.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
