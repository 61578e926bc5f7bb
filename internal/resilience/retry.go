package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retry calls fn up to attempts times with a fixed pause between attempts,
// stopping early on success or context cancellation. The grammar client
// uses it for transient HTTP failures; startup uses it to wait for the
// grammar service to come up.
func Retry(ctx context.Context, attempts int, pause time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		slog.Debug("retrying after failure",
			"attempt", attempt, "of", attempts, "pause", pause, "error", lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("resilience: retry aborted: %w", ctx.Err())
		case <-time.After(pause):
		}
	}
	return fmt.Errorf("resilience: %d attempts failed: %w", attempts, lastErr)
}
