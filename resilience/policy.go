package resilience

import (
	"math"
	"time"
)

// RetryPolicy decides whether a failed attempt is retried and how long to
// wait before the next one.
//
// Contract:
//   - Attempt indices start at 0 and increase by one per granted retry.
//   - ShouldRetry is called exactly once per failed attempt, before RetryDelay.
//   - RetryDelay must return a non-negative duration for every attempt
//     ShouldRetry grants.
//   - Neither method may panic. The executor converts panics and negative
//     delays into a *PolicyError.
//   - Policies are stateless unless documented otherwise.
type RetryPolicy interface {
	ShouldRetry(attempt int, err error) bool
	RetryDelay(attempt int) time.Duration
}

// RetryPolicyFunc builds a RetryPolicy from two functions.
type RetryPolicyFunc struct {
	Retry func(attempt int, err error) bool
	Delay func(attempt int) time.Duration
}

// ShouldRetry calls f.Retry. A nil Retry never retries.
func (f RetryPolicyFunc) ShouldRetry(attempt int, err error) bool {
	if f.Retry == nil {
		return false
	}
	return f.Retry(attempt, err)
}

// RetryDelay calls f.Delay. A nil Delay waits zero.
func (f RetryPolicyFunc) RetryDelay(attempt int) time.Duration {
	if f.Delay == nil {
		return 0
	}
	return f.Delay(attempt)
}

// Backoff defaults.
const (
	// DefaultBaseUnit is the delay before the first retry.
	DefaultBaseUnit = time.Second

	// MaxBackoffDelay is the largest representable delay and the default cap.
	MaxBackoffDelay = time.Duration(math.MaxInt64)
)

// BackoffPolicy retries up to a fixed ceiling with exponentially growing
// delays: RetryDelay(n) = baseUnit * 2^n, saturating at maxDelay.
type BackoffPolicy struct {
	maxRetries int
	baseUnit   time.Duration
	maxDelay   time.Duration
}

// BackoffOption configures a BackoffPolicy.
type BackoffOption func(*BackoffPolicy)

// WithBaseUnit sets the delay before the first retry.
func WithBaseUnit(d time.Duration) BackoffOption {
	return func(p *BackoffPolicy) {
		p.baseUnit = d
	}
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(p *BackoffPolicy) {
		p.maxDelay = d
	}
}

// NewBackoffPolicy creates a policy allowing maxRetries retries after the
// initial attempt. Negative values are treated as 0.
func NewBackoffPolicy(maxRetries int, opts ...BackoffOption) *BackoffPolicy {
	p := &BackoffPolicy{
		maxRetries: maxRetries,
		baseUnit:   DefaultBaseUnit,
		maxDelay:   MaxBackoffDelay,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.maxRetries < 0 {
		p.maxRetries = 0
	}
	if p.baseUnit < 0 {
		p.baseUnit = 0
	}
	if p.maxDelay <= 0 {
		p.maxDelay = MaxBackoffDelay
	}
	return p
}

// ShouldRetry reports whether attempt is below the retry ceiling.
func (p *BackoffPolicy) ShouldRetry(attempt int, _ error) bool {
	return attempt < p.maxRetries
}

// RetryDelay returns baseUnit * 2^attempt, capped at the policy's max delay.
func (p *BackoffPolicy) RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if p.baseUnit == 0 {
		return 0
	}

	// Shifting by 63 or more always overflows an int64.
	if attempt >= 63 {
		return p.maxDelay
	}
	if p.baseUnit > p.maxDelay>>attempt {
		return p.maxDelay
	}
	return p.baseUnit << attempt
}

// MaxRetries returns the retry ceiling.
func (p *BackoffPolicy) MaxRetries() int {
	return p.maxRetries
}

// BaseUnit returns the delay before the first retry.
func (p *BackoffPolicy) BaseUnit() time.Duration {
	return p.baseUnit
}

// MaxDelay returns the delay cap.
func (p *BackoffPolicy) MaxDelay() time.Duration {
	return p.maxDelay
}
