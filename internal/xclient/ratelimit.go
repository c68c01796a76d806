package xclient

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// newLimiter creates the outbound limiter; non-positive values fall back to 2 rps, burst 10.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = 2.0
	}
	if burst <= 0 {
		burst = 10
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// waitToken blocks until l grants a token. When ctx's deadline falls before
// the token is available it fails at once with an error wrapping
// context.DeadlineExceeded, so callers can tell a deadline from other failures.
func waitToken(ctx context.Context, l *rate.Limiter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := l.Reserve()
	if !res.OK() {
		return fmt.Errorf("rate: burst %d cannot grant a token", l.Burst())
	}
	delay := res.Delay()
	if delay <= 0 {
		return nil
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < delay {
		res.Cancel()
		return fmt.Errorf("rate: next token in %s: %w", delay, context.DeadlineExceeded)
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		res.Cancel()
		return ctx.Err()
	}
}
