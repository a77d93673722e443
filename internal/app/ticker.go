package app

import (
	"context"
	"time"

	"dugod-content-service/internal/domain"
)

// DefaultTickInterval is the countdown recompute cadence.
const DefaultTickInterval = time.Second

// Ticker recomputes a countdown on a fixed interval.
type Ticker struct {
	interval time.Duration
	now      func() time.Time
}

func NewTicker(interval time.Duration) *Ticker {
	return NewTickerWithClock(interval, time.Now)
}

// NewTickerWithClock is used by tests for deterministic remaining times.
func NewTickerWithClock(interval time.Duration, now func() time.Time) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Ticker{interval: interval, now: now}
}

// Watch emits the remaining time until target immediately and then once per interval.
// The channel is closed after the expired value has been delivered or when ctx is done;
// the underlying timer is stopped in both cases.
func (t *Ticker) Watch(ctx context.Context, target time.Time) <-chan domain.TimeRemaining {
	out := make(chan domain.TimeRemaining, 1)
	go func() {
		defer close(out)
		timer := time.NewTicker(t.interval)
		defer timer.Stop()

		for {
			remaining := domain.Remaining(target, t.now())
			select {
			case out <- remaining:
			case <-ctx.Done():
				return
			}
			if remaining.IsExpired {
				return
			}
			select {
			case <-timer.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
