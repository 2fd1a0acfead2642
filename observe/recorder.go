package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/trylite/resilience"
)

// Recorder feeds executor telemetry into tracing, metrics and logging.
// It satisfies resilience.Recorder and is passed to an executor with
// resilience.WithRecorder.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: the invocation span is a child of the span carried by ctx.
//   - Errors: recording is best-effort; errors are recorded, never returned.
type Recorder struct {
	tracer    Tracer
	metrics   Metrics
	logger    Logger
	namespace string
	now       func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithNamespace prefixes every operation identifier.
func WithNamespace(ns string) RecorderOption {
	return func(r *Recorder) {
		r.namespace = ns
	}
}

// WithNow overrides the clock used to timestamp the end of an invocation.
func WithNow(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder creates a Recorder from the given components. Nil components
// are replaced with no-op implementations.
func NewRecorder(tracer Tracer, metrics Metrics, logger Logger, opts ...RecorderOption) *Recorder {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}

	r := &Recorder{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecorderFromObserver creates a Recorder from an Observer.
// This is a convenience function for common use cases.
func RecorderFromObserver(obs Observer, opts ...RecorderOption) (*Recorder, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewRecorder(NewTracer(obs.Tracer()), metrics, obs.Logger(), opts...), nil
}

func (r *Recorder) meta(name string, strategy resilience.Strategy) OperationMeta {
	return OperationMeta{
		Name:      name,
		Namespace: r.namespace,
		Strategy:  strategy.String(),
	}
}

type invocationKey struct{}

// invocation is the span opened by RecordStart, kept in the context handed
// to the operation.
type invocation struct {
	span trace.Span
	meta OperationMeta
}

// RecordStart opens the invocation span. The returned context carries it, so
// failed attempts are added to it as events and spans started by the
// operation become its children.
func (r *Recorder) RecordStart(ctx context.Context, name string, strategy resilience.Strategy) context.Context {
	meta := r.meta(name, strategy)
	ctx, span := r.tracer.StartSpan(ctx, meta, trace.WithTimestamp(r.now()))
	return context.WithValue(ctx, invocationKey{}, &invocation{span: span, meta: meta})
}

// RecordAttempt counts a failed attempt and adds an event to the span
// active in ctx, if any.
func (r *Recorder) RecordAttempt(ctx context.Context, name string, strategy resilience.Strategy, attempt int, err error) {
	meta := r.meta(name, strategy)

	r.metrics.RecordAttempt(ctx, meta, attempt, err)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		attrs := []attribute.KeyValue{
			attribute.String("operation.id", meta.OperationID()),
			attribute.Int("attempt", attempt),
		}
		if err != nil {
			attrs = append(attrs, attribute.String("error", err.Error()))
		}
		span.AddEvent("attempt.failed", trace.WithAttributes(attrs...))
	}

	r.logger.WithOperation(meta).Debug(ctx, "attempt failed", Field{Key: "attempt", Value: attempt})
}

// RecordOutcome ends the invocation span and records execution metrics.
// Without a preceding RecordStart the span is emitted after the fact,
// spanning start to now.
func (r *Recorder) RecordOutcome(ctx context.Context, name string, strategy resilience.Strategy, attempts int, start time.Time, err error) {
	meta := r.meta(name, strategy)
	end := r.now()
	duration := end.Sub(start)
	if duration < 0 {
		duration = 0
	}

	span := r.invocationSpan(ctx, meta)
	if span == nil {
		_, span = r.tracer.StartSpan(ctx, meta, trace.WithTimestamp(start))
	}
	span.SetAttributes(attribute.Int("operation.attempts", attempts))
	r.tracer.EndSpan(span, err, trace.WithTimestamp(end))

	r.metrics.RecordExecution(ctx, meta, attempts, duration, err)

	// Failures are already reported through the failure logger.
	fields := []Field{
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		{Key: "attempts", Value: attempts},
	}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		r.logger.WithOperation(meta).Debug(ctx, "operation failed", fields...)
		return
	}
	r.logger.WithOperation(meta).Debug(ctx, "operation completed", fields...)
}

// invocationSpan returns the span RecordStart opened for meta, or nil.
func (r *Recorder) invocationSpan(ctx context.Context, meta OperationMeta) trace.Span {
	inv, ok := ctx.Value(invocationKey{}).(*invocation)
	if !ok || inv.meta != meta {
		return nil
	}
	return inv.span
}

var _ resilience.Recorder = (*Recorder)(nil)
