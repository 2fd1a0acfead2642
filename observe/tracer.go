package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// OperationMeta describes an executed operation for telemetry purposes.
type OperationMeta struct {
	Name      string // Executor or operation name (required)
	Namespace string // Grouping prefix (optional)
	Strategy  string // plain|retry|classify|fallback (optional)
}

// SpanName returns the deterministic span name for this operation.
// Format: trylite.exec.<namespace>.<name> or trylite.exec.<name>
func (m OperationMeta) SpanName() string {
	return "trylite.exec." + m.OperationID()
}

// OperationID returns the fully qualified operation identifier.
func (m OperationMeta) OperationID() string {
	if m.Namespace != "" {
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

func (m OperationMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("operation.id", m.OperationID()),
		attribute.String("operation.name", m.Name),
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("operation.namespace", m.Namespace))
	}
	if m.Strategy != "" {
		attrs = append(attrs, attribute.String("operation.strategy", m.Strategy))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with operation-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan returns a context carrying the new span.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an operation. opts may carry an
	// explicit start timestamp for spans recorded after the fact.
	StartSpan(ctx context.Context, meta OperationMeta, opts ...trace.SpanStartOption) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error, opts ...trace.SpanEndOption)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
// A nil tracer yields a no-op implementation.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with operation metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta OperationMeta, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("operation.error", false))

	startOpts := make([]trace.SpanStartOption, 0, len(opts)+2)
	startOpts = append(startOpts,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	startOpts = append(startOpts, opts...)

	return t.tracer.Start(ctx, meta.SpanName(), startOpts...)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error, opts ...trace.SpanEndOption) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("operation.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(opts...)
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OperationMeta, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error, opts ...trace.SpanEndOption) {
	span.End()
}
