package resilience

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// BackOffPolicy adapts a backoff.BackOff to RetryPolicy.
//
// It is stateful and single-use: ShouldRetry draws the next interval from the
// underlying BackOff once per attempt and RetryDelay returns that interval.
// A backoff.Stop interval ends retrying. Call Reset before reusing it.
type BackOffPolicy struct {
	mu         sync.Mutex
	b          backoff.BackOff
	maxRetries int

	drawn    int // attempt index of the cached interval, -1 if none
	interval time.Duration
}

// NewBackOffPolicy wraps b, allowing at most maxRetries retries. A negative
// maxRetries leaves the ceiling to b alone.
func NewBackOffPolicy(b backoff.BackOff, maxRetries int) *BackOffPolicy {
	if b == nil {
		b = &backoff.StopBackOff{}
	}
	b.Reset()
	return &BackOffPolicy{
		b:          b,
		maxRetries: maxRetries,
		drawn:      -1,
	}
}

// NewExponentialBackOffPolicy wraps a backoff.ExponentialBackOff starting at
// initial and capped at maxInterval, or backoff.DefaultMaxInterval when
// maxInterval is not positive. Randomization is disabled.
func NewExponentialBackOffPolicy(initial, maxInterval time.Duration, maxRetries int) *BackOffPolicy {
	if maxInterval <= 0 {
		maxInterval = backoff.DefaultMaxInterval
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxInterval
	b.RandomizationFactor = 0
	return NewBackOffPolicy(b, maxRetries)
}

// ShouldRetry draws the interval for attempt and reports whether it allows
// another try.
func (p *BackOffPolicy) ShouldRetry(attempt int, _ error) bool {
	if p.maxRetries >= 0 && attempt >= p.maxRetries {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.drawn != attempt {
		p.interval = p.b.NextBackOff()
		p.drawn = attempt
	}
	return p.interval != backoff.Stop
}

// RetryDelay returns the interval drawn by ShouldRetry for attempt.
func (p *BackOffPolicy) RetryDelay(attempt int) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.drawn != attempt {
		p.interval = p.b.NextBackOff()
		p.drawn = attempt
	}
	if p.interval == backoff.Stop {
		return 0
	}
	return p.interval
}

// Reset rewinds the policy to attempt 0.
func (p *BackOffPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.b.Reset()
	p.drawn = -1
	p.interval = 0
}
