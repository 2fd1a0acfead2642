package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WithAttemptTimeout bounds every attempt with its own deadline. An attempt
// that fails after its deadline passed is reported as a KindTimeout error
// wrapping the operation's error, so classifiers and retry policies can
// match it with MatchKind(KindTimeout). Zero disables the bound.
func WithAttemptTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.attemptTimeout = d
		}
	}
}

// AttemptTimeout returns the per-attempt deadline, zero when unbounded.
func (e *Executor) AttemptTimeout() time.Duration {
	return e.orDefault().attemptTimeout
}

// runAttempt calls op once, applying the executor's attempt timeout.
func runAttempt[T any](ctx context.Context, ex *Executor, op Operation[T]) (T, error) {
	if ex.attemptTimeout <= 0 {
		return op(ctx)
	}

	actx, cancel := context.WithTimeout(ctx, ex.attemptTimeout)
	defer cancel()

	v, err := op(actx)
	if err == nil {
		return v, nil
	}

	// Only the attempt's own deadline counts; the caller's ctx ending is not
	// a timeout of this attempt.
	if errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return v, &KindError{
			Kind: KindTimeout,
			Msg:  fmt.Sprintf("attempt timed out after %s: %v", ex.attemptTimeout, err),
			Err:  err,
		}
	}
	return v, err
}
