package registry

import (
	"context"
	"sync"
	"time"
)

// A rolling window rate limiter. It tracks the timestamps of the requests issued
// within the window and suspends callers once the limit is reached, until the
// oldest request falls out of the window. It is shared by all batches of a
// client, so the limit holds process-wide.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Blocks until a request slot is available or the context is cancelled.
func (rl *rateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := rl.now()
		rl.prune(now)
		if len(rl.stamps) < rl.limit {
			rl.stamps = append(rl.stamps, now)
			rl.mu.Unlock()
			return nil
		}
		// The window is full, wait until the oldest request rolls out
		waitFor := rl.stamps[0].Add(rl.window).Sub(now)
		rl.mu.Unlock()

		timer := time.NewTimer(waitFor)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Returns how many slots are currently taken. Used by tests.
func (rl *rateLimiter) used() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.prune(rl.now())
	return len(rl.stamps)
}

func (rl *rateLimiter) prune(now time.Time) {
	cutoff := now.Add(-rl.window)
	firstValid := 0
	for firstValid < len(rl.stamps) && !rl.stamps[firstValid].After(cutoff) {
		firstValid++
	}
	rl.stamps = rl.stamps[firstValid:]
}
