package resilience

import (
	"context"
	"fmt"
	"time"
)

// ExecuteWithRetry runs op until it succeeds or policy stops granting
// retries.
//
// Each failed attempt is evaluated exactly once: policy.ShouldRetry decides
// whether to continue, and policy.RetryDelay(attempt) gives the wait before
// the next attempt. Retried failures are logged at SeverityWarn; the final
// failure is logged at SeverityError and returned as an *OperationError
// carrying message.
//
// A context cancelled during the wait ends the loop with an
// *InterruptedError. A panicking policy or a negative delay ends it with a
// *PolicyError. A nil policy never retries.
//
// The executor imposes no attempt limit of its own: a policy that always
// grants retries loops until op succeeds or ctx is cancelled.
func ExecuteWithRetry[T any](ctx context.Context, ex *Executor, op Operation[T], policy RetryPolicy, message string) (T, error) {
	ex = ex.orDefault()
	var zero T
	if op == nil {
		return zero, ErrNilOperation
	}
	if policy == nil {
		policy = NewBackoffPolicy(0)
	}

	start := ex.clock.Now()
	ctx = ex.recorder.RecordStart(ctx, ex.name, StrategyRetry)
	for attempt := 0; ; attempt++ {
		v, err := runAttempt(ctx, ex, op)
		if err == nil {
			ex.succeed(ctx, StrategyRetry, attempt+1, start)
			return v, nil
		}
		ex.recorder.RecordAttempt(ctx, ex.name, StrategyRetry, attempt, err)

		retry, perr := shouldRetry(policy, attempt, err)
		if perr != nil {
			return zero, ex.fail(ctx, StrategyRetry, attempt+1, start, perr.Error(), err, perr)
		}
		if !retry {
			opErr := &OperationError{Message: message, Cause: err, Attempts: attempt + 1}
			return zero, ex.fail(ctx, StrategyRetry, attempt+1, start, message, err, opErr)
		}

		delay, perr := retryDelay(policy, attempt, err)
		if perr != nil {
			return zero, ex.fail(ctx, StrategyRetry, attempt+1, start, perr.Error(), err, perr)
		}

		ex.logger.LogFailure(ctx, SeverityWarn, fmt.Sprintf("retry attempt #%d failed", attempt+1), err)

		if serr := ex.clock.Sleep(ctx, delay); serr != nil {
			ierr := &InterruptedError{Attempt: attempt, Cause: serr, Last: err}
			return zero, ex.fail(ctx, StrategyRetry, attempt+1, start, ierr.Error(), serr, ierr)
		}
	}
}

// shouldRetry calls p.ShouldRetry, converting a panic into a *PolicyError.
func shouldRetry(p RetryPolicy, attempt int, last error) (retry bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PolicyError{Op: "ShouldRetry", Attempt: attempt, Cause: panicError(r), Last: last}
		}
	}()
	return p.ShouldRetry(attempt, last), nil
}

// retryDelay calls p.RetryDelay, converting a panic or a negative delay into
// a *PolicyError.
func retryDelay(p RetryPolicy, attempt int, last error) (delay time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PolicyError{Op: "RetryDelay", Attempt: attempt, Cause: panicError(r), Last: last}
		}
	}()

	delay = p.RetryDelay(attempt)
	if delay < 0 {
		return 0, &PolicyError{Op: "RetryDelay", Attempt: attempt, Cause: fmt.Errorf("negative delay %s", delay), Last: last}
	}
	return delay, nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
