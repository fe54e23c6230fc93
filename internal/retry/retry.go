package retry

import (
	"context"
	"fmt"
	"time"
)

// Backoff is the wait before attempt i+1 after attempt i failed.
var Backoff = func(i int) time.Duration {
	return time.Duration(500*(i+1)) * time.Millisecond
}

// Do retries fn up to attempts times with a growing backoff. It stops
// early when ctx is done.
func Do[T any](ctx context.Context, attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("after %d attempts: %w", i+1, lastErr)
		case <-time.After(Backoff(i)):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
