package timeutil

import (
	"context"
	"time"
)

// MaxDuration returns the highest duration in the slice, or zero when empty.
func MaxDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	max := durations[0]
	for _, d := range durations[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

// SleepContext blocks for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunWithTimeout runs fn on its own goroutine and waits for whichever comes
// first: fn returning, the timeout elapsing, or ctx being done.
//
// fn is never interrupted. If the timer or ctx wins, fn keeps running and its
// result is dropped into a buffered channel nobody reads, so the goroutine
// still exits once fn returns.
func RunWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func() T) (T, error) {
	var zero T
	done := make(chan T, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-done:
		return result, nil
	case <-timer.C:
		return zero, ErrTimedOut
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
