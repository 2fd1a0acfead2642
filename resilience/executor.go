package resilience

import (
	"context"
	"time"
)

// Operation is a fallible unit of work. The executor calls it once per
// attempt and does not retain it after the call returns.
type Operation[T any] func(ctx context.Context) (T, error)

// Strategy identifies which entry point handled an invocation.
type Strategy int

const (
	// StrategyPlain wraps a single attempt with a fixed message.
	StrategyPlain Strategy = iota
	// StrategyRetry consults a RetryPolicy between attempts.
	StrategyRetry
	// StrategyClassify maps the failure to a message through a Classifier.
	StrategyClassify
	// StrategyFallback substitutes a value for one kind of failure.
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyPlain:
		return "plain"
	case StrategyRetry:
		return "retry"
	case StrategyClassify:
		return "classify"
	case StrategyFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Recorder observes attempts and outcomes, typically for metrics and tracing.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: the context returned by RecordStart is passed to the
//     operation and to the later calls for the same invocation.
//   - Errors: recording is best-effort and must not panic.
type Recorder interface {
	// RecordStart is called once per invocation before anything else is
	// recorded for it.
	RecordStart(ctx context.Context, name string, strategy Strategy) context.Context

	// RecordAttempt is called for every failed attempt.
	RecordAttempt(ctx context.Context, name string, strategy Strategy, attempt int, err error)

	// RecordOutcome is called once per invocation when it reaches a terminal
	// state. err is nil on success and on fallback substitution.
	RecordOutcome(ctx context.Context, name string, strategy Strategy, attempts int, start time.Time, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordStart(ctx context.Context, _ string, _ Strategy) context.Context {
	return ctx
}

func (nopRecorder) RecordAttempt(context.Context, string, Strategy, int, error)            {}
func (nopRecorder) RecordOutcome(context.Context, string, Strategy, int, time.Time, error) {}

// Executor holds the collaborators shared by the entry points: where
// failures are logged, how the retry wait is performed and where telemetry
// goes. It is immutable and safe for concurrent use; a nil *Executor behaves
// like NewExecutor().
type Executor struct {
	name           string
	logger         FailureLogger
	clock          Clock
	recorder       Recorder
	attemptTimeout time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the failure logger.
func WithLogger(l FailureLogger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used to wait between attempts.
func WithClock(c Clock) ExecutorOption {
	return func(e *Executor) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) ExecutorOption {
	return func(e *Executor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithName labels the executor's telemetry.
func WithName(name string) ExecutorOption {
	return func(e *Executor) {
		e.name = name
	}
}

// NewExecutor creates an executor. Without options it discards failures and
// waits on the system clock.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		name:     "default",
		logger:   NopLogger{},
		clock:    SystemClock{},
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExecutor = NewExecutor()

func (e *Executor) orDefault() *Executor {
	if e == nil {
		return defaultExecutor
	}
	return e
}

// Name returns the telemetry label.
func (e *Executor) Name() string {
	return e.orDefault().name
}

// succeed records a successful terminal state.
func (e *Executor) succeed(ctx context.Context, strategy Strategy, attempts int, start time.Time) {
	e.recorder.RecordOutcome(ctx, e.name, strategy, attempts, start, nil)
}

// fail logs a terminal failure once and records it.
func (e *Executor) fail(ctx context.Context, strategy Strategy, attempts int, start time.Time, message string, cause, terminal error) error {
	e.logger.LogFailure(ctx, SeverityError, message, cause)
	e.recorder.RecordOutcome(ctx, e.name, strategy, attempts, start, terminal)
	return terminal
}

// Execute runs op once. A failure is logged and returned as an
// *OperationError carrying message.
func Execute[T any](ctx context.Context, ex *Executor, op Operation[T], message string) (T, error) {
	ex = ex.orDefault()
	var zero T
	if op == nil {
		return zero, ErrNilOperation
	}

	start := ex.clock.Now()
	ctx = ex.recorder.RecordStart(ctx, ex.name, StrategyPlain)
	v, err := runAttempt(ctx, ex, op)
	if err == nil {
		ex.succeed(ctx, StrategyPlain, 1, start)
		return v, nil
	}
	ex.recorder.RecordAttempt(ctx, ex.name, StrategyPlain, 0, err)

	opErr := &OperationError{Message: message, Cause: err, Attempts: 1}
	return zero, ex.fail(ctx, StrategyPlain, 1, start, message, err, opErr)
}

// ExecuteClassified runs op once. A failure is resolved to the message of the
// first matching classifier entry, or DefaultMessage when none matches.
func ExecuteClassified[T any](ctx context.Context, ex *Executor, op Operation[T], classifier Classifier) (T, error) {
	ex = ex.orDefault()
	var zero T
	if op == nil {
		return zero, ErrNilOperation
	}

	start := ex.clock.Now()
	ctx = ex.recorder.RecordStart(ctx, ex.name, StrategyClassify)
	v, err := runAttempt(ctx, ex, op)
	if err == nil {
		ex.succeed(ctx, StrategyClassify, 1, start)
		return v, nil
	}
	ex.recorder.RecordAttempt(ctx, ex.name, StrategyClassify, 0, err)

	msg, matched := classifier.Resolve(err)
	opErr := &OperationError{Message: msg, Cause: err, Attempts: 1, Unmatched: !matched}
	return zero, ex.fail(ctx, StrategyClassify, 1, start, msg, err, opErr)
}

// ExecuteWithKinds pairs kinds and messages by position and runs op through
// ExecuteClassified. Lists of different lengths are rejected with a
// *PolicyError before op runs.
func ExecuteWithKinds[T any](ctx context.Context, ex *Executor, op Operation[T], kinds []Matcher, messages []string) (T, error) {
	classifier, err := NewClassifier(kinds, messages)
	if err != nil {
		ex = ex.orDefault()
		var zero T
		perr := &PolicyError{Op: "classify", Cause: err}
		start := ex.clock.Now()
		ctx = ex.recorder.RecordStart(ctx, ex.name, StrategyClassify)
		return zero, ex.fail(ctx, StrategyClassify, 0, start, perr.Error(), err, perr)
	}
	return ExecuteClassified(ctx, ex, op, classifier)
}

// ExecuteWithFallback runs op once. A failure is logged with message; when
// match accepts it, fallback is returned without error. Any other failure
// becomes an *OperationError with DefaultMessage.
func ExecuteWithFallback[T any](ctx context.Context, ex *Executor, op Operation[T], match Matcher, message string, fallback T) (T, error) {
	ex = ex.orDefault()
	var zero T
	if op == nil {
		return zero, ErrNilOperation
	}

	start := ex.clock.Now()
	ctx = ex.recorder.RecordStart(ctx, ex.name, StrategyFallback)
	v, err := runAttempt(ctx, ex, op)
	if err == nil {
		ex.succeed(ctx, StrategyFallback, 1, start)
		return v, nil
	}
	ex.recorder.RecordAttempt(ctx, ex.name, StrategyFallback, 0, err)

	if match != nil && match(err) {
		ex.logger.LogFailure(ctx, SeverityWarn, message, err)
		ex.succeed(ctx, StrategyFallback, 1, start)
		return fallback, nil
	}

	opErr := &OperationError{Message: DefaultMessage, Cause: err, Attempts: 1, Unmatched: true}
	return zero, ex.fail(ctx, StrategyFallback, 1, start, message, err, opErr)
}
