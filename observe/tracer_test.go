package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer() (*tracerImpl, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return &tracerImpl{tracer: tp.Tracer("test")}, recorder
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[string]attribute.Value {
	attrMap := make(map[string]attribute.Value)
	for _, a := range s.Attributes() {
		attrMap[string(a.Key)] = a.Value
	}
	return attrMap
}

// TestOperationMeta_SpanName verifies span names with and without namespace.
func TestOperationMeta_SpanName(t *testing.T) {
	tests := []struct {
		name     string
		meta     OperationMeta
		expected string
	}{
		{
			name:     "with namespace",
			meta:     OperationMeta{Namespace: "billing", Name: "charge"},
			expected: "trylite.exec.billing.charge",
		},
		{
			name:     "without namespace",
			meta:     OperationMeta{Name: "read"},
			expected: "trylite.exec.read",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.meta.SpanName(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

// TestTracer_SpanAttributes verifies all attributes are present on span.
func TestTracer_SpanAttributes(t *testing.T) {
	tr, recorder := newTestTracer()
	meta := OperationMeta{Namespace: "billing", Name: "charge", Strategy: "retry"}

	_, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]

	if s.Name() != "trylite.exec.billing.charge" {
		t.Errorf("expected span name 'trylite.exec.billing.charge', got %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindInternal {
		t.Errorf("expected internal span kind, got %v", s.SpanKind())
	}

	attrMap := spanAttrs(s)
	if v, ok := attrMap["operation.id"]; !ok || v.AsString() != "billing.charge" {
		t.Errorf("expected operation.id='billing.charge', got %v", v)
	}
	if v, ok := attrMap["operation.strategy"]; !ok || v.AsString() != "retry" {
		t.Errorf("expected operation.strategy='retry', got %v", v)
	}
	if v, ok := attrMap["operation.error"]; !ok || v.AsBool() {
		t.Errorf("expected operation.error=false, got %v", v)
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("expected status Ok, got %v", s.Status().Code)
	}
}

// TestTracer_ErrorRecorded verifies error status, attribute and event.
func TestTracer_ErrorRecorded(t *testing.T) {
	tr, recorder := newTestTracer()

	_, span := tr.StartSpan(context.Background(), OperationMeta{Name: "failing"})
	tr.EndSpan(span, errors.New("boom"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error || s.Status().Description != "boom" {
		t.Errorf("expected Error status 'boom', got %+v", s.Status())
	}
	if v := spanAttrs(s)["operation.error"]; !v.AsBool() {
		t.Errorf("expected operation.error=true")
	}
	if len(s.Events()) == 0 || s.Events()[0].Name != "exception" {
		t.Errorf("expected exception event, got %+v", s.Events())
	}
}

// TestTracer_ExplicitTimestamps verifies start and end options are honored.
func TestTracer_ExplicitTimestamps(t *testing.T) {
	tr, recorder := newTestTracer()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)

	_, span := tr.StartSpan(context.Background(), OperationMeta{Name: "late"}, trace.WithTimestamp(start))
	tr.EndSpan(span, nil, trace.WithTimestamp(end))

	s := recorder.Ended()[0]
	if !s.StartTime().Equal(start) {
		t.Errorf("start = %v, want %v", s.StartTime(), start)
	}
	if !s.EndTime().Equal(end) {
		t.Errorf("end = %v, want %v", s.EndTime(), end)
	}
}

// TestTracer_ParentChild verifies spans nest under the span in ctx.
func TestTracer_ParentChild(t *testing.T) {
	tr, recorder := newTestTracer()

	ctx, parent := tr.StartSpan(context.Background(), OperationMeta{Name: "parent"})
	_, child := tr.StartSpan(ctx, OperationMeta{Name: "child"})
	tr.EndSpan(child, nil)
	tr.EndSpan(parent, nil)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("child span should have parent as parent")
	}
}

// TestNewTracer_Nil verifies a nil tracer yields a no-op implementation.
func TestNewTracer_Nil(t *testing.T) {
	tr := NewTracer(nil)
	_, span := tr.StartSpan(context.Background(), OperationMeta{Name: "noop"})
	if span.IsRecording() {
		t.Error("expected non-recording span")
	}
	tr.EndSpan(span, errors.New("ignored"))
}
