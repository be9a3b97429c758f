package ratelimit

import (
	"context"
	"sync"
	"time"
)

type RateLimiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay pauses for the same delay on every Wait: no jitter, no
// backoff. It is a courtesy towards target sites, not a budget.
type FixedDelay struct {
	delay time.Duration
	mu    sync.Mutex
	waits int
}

func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{delay: delay}
}

func (f *FixedDelay) Wait(ctx context.Context) error {
	f.mu.Lock()
	f.waits++
	f.mu.Unlock()

	if f.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *FixedDelay) Delay() time.Duration {
	return f.delay
}

// Waits is the number of Wait calls so far.
func (f *FixedDelay) Waits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waits
}
