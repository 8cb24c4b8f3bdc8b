package structured

import (
	"context"
	"math/rand"
	"time"
)

// retryState is the explicit state of one Generate invocation's retry loop:
// attempt counts, the last observed error, and nothing else. Keeping it a
// plain value makes the bounded-attempts and jitter invariants testable
// without driving the whole mediator.
type retryState struct {
	attempts    int   // parse/shape attempts consumed
	rateLimited int   // rate-limit backoff attempts consumed
	lastErr     error // last failure, attached to the terminal error
}

// randFloat is swappable in tests to pin jitter.
var randFloat = rand.Float64

// backoffDelay computes the delay before retry number n (1-based): the base
// doubled per attempt, capped, with symmetric jitter applied so concurrent
// callers do not retry in lockstep.
func backoffDelay(n int, base, max time.Duration, jitter float64) time.Duration {
	if n < 1 {
		n = 1
	}
	d := base << uint(n-1)
	if d > max || d <= 0 {
		d = max
	}
	if jitter > 0 {
		// Scale by a factor in [1-jitter, 1+jitter].
		factor := 1 + jitter*(2*randFloat()-1)
		d = time.Duration(float64(d) * factor)
	}
	if d > max {
		d = max
	}
	return d
}

// sleepCtx waits for d or until the context is cancelled, whichever first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
