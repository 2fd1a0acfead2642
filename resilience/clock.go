package resilience

import (
	"context"
	"time"
)

// Clock suspends the caller between attempts.
//
// Contract:
//   - Sleep blocks until d has elapsed or ctx is done, whichever comes first.
//   - Sleep returns ctx.Err() when ctx ends the wait, nil otherwise.
//   - A non-positive d returns immediately unless ctx is already done.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep waits for d or ctx cancellation.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
