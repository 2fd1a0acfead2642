package resilience

import (
	"context"
	"sync"
	"time"
)

// fakeClock records requested sleeps and advances virtual time instantly.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

type logEntry struct {
	severity Severity
	message  string
	cause    error
}

// recordingLogger captures every LogFailure call.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) LogFailure(_ context.Context, severity Severity, message string, cause error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{severity: severity, message: message, cause: cause})
}

func (l *recordingLogger) Entries() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), l.entries...)
}

type outcome struct {
	strategy Strategy
	attempts int
	err      error
}

// recordingRecorder captures attempts and outcomes.
type recordingRecorder struct {
	mu       sync.Mutex
	starts   []Strategy
	attempts []int
	outcomes []outcome
}

type invocationKey struct{}

// RecordStart tags ctx with the invocation number so tests can check which
// context reaches the operation.
func (r *recordingRecorder) RecordStart(ctx context.Context, _ string, strategy Strategy) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, strategy)
	return context.WithValue(ctx, invocationKey{}, len(r.starts))
}

func (r *recordingRecorder) RecordAttempt(_ context.Context, _ string, _ Strategy, attempt int, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
}

func (r *recordingRecorder) RecordOutcome(_ context.Context, _ string, strategy Strategy, attempts int, _ time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome{strategy: strategy, attempts: attempts, err: err})
}

// newTestExecutor returns an executor wired to fakes.
func newTestExecutor(opts ...ExecutorOption) (*Executor, *fakeClock, *recordingLogger, *recordingRecorder) {
	clock := newFakeClock()
	logger := &recordingLogger{}
	rec := &recordingRecorder{}
	all := append([]ExecutorOption{WithClock(clock), WithLogger(logger), WithRecorder(rec)}, opts...)
	return NewExecutor(all...), clock, logger, rec
}

// failN returns an operation that fails n times with err, then returns value.
func failN[T any](n int, err error, value T) (Operation[T], *int) {
	calls := 0
	return func(ctx context.Context) (T, error) {
		calls++
		if calls <= n {
			var zero T
			return zero, err
		}
		return value, nil
	}, &calls
}
