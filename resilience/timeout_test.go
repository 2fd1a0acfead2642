package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAttemptTimeout_TagsDeadlineAsTimeout(t *testing.T) {
	ex, _, _, _ := newTestExecutor(WithAttemptTimeout(10 * time.Millisecond))

	_, err := ExecuteWithKinds(context.Background(), ex, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, []Matcher{MatchKind(KindTimeout)}, []string{"too slow"})

	if err == nil || err.Error() != "too slow" {
		t.Fatalf("error = %v, want too slow", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("deadline cause lost")
	}
}

func TestAttemptTimeout_EachAttemptGetsFreshDeadline(t *testing.T) {
	ex, _, _, _ := newTestExecutor(WithAttemptTimeout(20 * time.Millisecond))

	calls := 0
	got, err := ExecuteWithRetry(context.Background(), ex, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "done", nil
	}, NewBackoffPolicy(5, WithBaseUnit(0)), "failed")

	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got != "done" || calls != 3 {
		t.Errorf("result = %q after %d calls", got, calls)
	}
}

func TestAttemptTimeout_ErrorsBeforeDeadlinePassThrough(t *testing.T) {
	ex, _, _, _ := newTestExecutor(WithAttemptTimeout(time.Minute))
	testErr := NewError(KindInvalidState, "state")

	_, err := ExecuteWithKinds(context.Background(), ex, func(ctx context.Context) (int, error) {
		return 0, testErr
	}, []Matcher{MatchKind(KindTimeout), MatchKind(KindInvalidState)}, []string{"slow", "state"})

	if err == nil || err.Error() != "state" {
		t.Errorf("error = %v, want state", err)
	}
}

func TestAttemptTimeout_ZeroDisables(t *testing.T) {
	ex := NewExecutor(WithAttemptTimeout(0))

	_, err := Execute(context.Background(), ex, func(ctx context.Context) (bool, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Error("attempt has a deadline")
		}
		return true, nil
	}, "m")
	if err != nil {
		t.Errorf("error = %v", err)
	}
}
