package places

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	secondWindow = time.Second
	dayWindow    = 24 * time.Hour
)

// RateLimiter throttles outbound geo-search calls under a dual budget: a
// burst cap per second and an aggregate cap per day. It is the sole gate
// every provider call passes through, so the process can never exceed either
// quota regardless of calling pattern. Safe for concurrent use; a blocked
// caller holds the lock, which serializes acquisition order.
type RateLimiter struct {
	mu           sync.Mutex
	maxPerSecond int
	maxPerDay    int
	perSecond    []time.Time
	perDay       []time.Time
	logger       *slog.Logger

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(maxPerSecond, maxPerDay int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		maxPerSecond: maxPerSecond,
		maxPerDay:    maxPerDay,
		logger:       logger,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

// Acquire blocks until a request slot is available in both windows, then
// records the request. It only fails when ctx is cancelled while waiting.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.perSecond = evictOlderThan(rl.perSecond, now, secondWindow)
	rl.perDay = evictOlderThan(rl.perDay, now, dayWindow)

	if len(rl.perDay) >= rl.maxPerDay {
		wait := dayWindow - now.Sub(rl.perDay[0])
		rl.logger.InfoContext(ctx, "Daily rate limit reached, waiting",
			slog.Duration("wait", wait))
		if err := rl.sleep(ctx, wait); err != nil {
			return err
		}
		// The day is treated as fully reset after the wait.
		rl.perDay = rl.perDay[:0]
		now = rl.now()
	} else if len(rl.perSecond) >= rl.maxPerSecond {
		wait := secondWindow - now.Sub(rl.perSecond[0])
		if wait > 0 {
			rl.logger.DebugContext(ctx, "Per-second rate limit reached, waiting",
				slog.Duration("wait", wait))
			if err := rl.sleep(ctx, wait); err != nil {
				return err
			}
			now = rl.now()
		}
	}

	rl.perSecond = append(rl.perSecond, now)
	rl.perDay = append(rl.perDay, now)
	return nil
}

func evictOlderThan(window []time.Time, now time.Time, age time.Duration) []time.Time {
	i := 0
	for i < len(window) && now.Sub(window[i]) >= age {
		i++
	}
	if i == 0 {
		return window
	}
	return append(window[:0], window[i:]...)
}

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
