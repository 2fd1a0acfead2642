package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics records execution metrics for operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordAttempt records a single failed attempt.
	RecordAttempt(ctx context.Context, meta OperationMeta, attempt int, err error)

	// RecordExecution records a finished invocation with its attempt count,
	// duration and error status.
	RecordExecution(ctx context.Context, meta OperationMeta, attempts int, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	attemptFails metric.Int64Counter
	durationHist metric.Float64Histogram
	attemptsHist metric.Int64Histogram
}

// NewMetrics creates a Metrics instance with the given meter. A nil meter
// records nothing.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("noop")
	}
	m, err := newMetrics(meter)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"trylite.exec.total",
		metric.WithDescription("Total number of operation invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"trylite.exec.errors",
		metric.WithDescription("Total number of invocations that ended in an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	attemptFails, err := meter.Int64Counter(
		"trylite.attempt.failures",
		metric.WithDescription("Total number of failed attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"trylite.exec.duration_ms",
		metric.WithDescription("Invocation duration in milliseconds, including retry waits"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	attemptsHist, err := meter.Int64Histogram(
		"trylite.exec.attempts",
		metric.WithDescription("Number of attempts per invocation"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		attemptFails: attemptFails,
		durationHist: durationHist,
		attemptsHist: attemptsHist,
	}, nil
}

// RecordAttempt increments the failed attempt counter.
func (m *metricsImpl) RecordAttempt(ctx context.Context, meta OperationMeta, attempt int, err error) {
	attrs := append(meta.attributes(), attribute.Int("attempt", attempt))
	m.attemptFails.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExecution records metrics for a finished invocation.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta OperationMeta, attempts int, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)

	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
	m.attemptsHist.Record(ctx, int64(attempts), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordAttempt(ctx context.Context, meta OperationMeta, attempt int, err error) {
}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta OperationMeta, attempts int, duration time.Duration, err error) {
}
