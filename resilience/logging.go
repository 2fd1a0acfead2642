package resilience

import "context"

// Severity is the level a failure is reported at.
type Severity int

const (
	// SeverityWarn marks recoverable failures: retried attempts and
	// fallback substitutions.
	SeverityWarn Severity = iota
	// SeverityError marks terminal failures.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// FailureLogger receives every failure the executor observes.
//
// Contract:
//   - Concurrency: implementations shared between goroutines must serialize
//     their own writes.
//   - Errors: logging is best-effort and must not panic.
type FailureLogger interface {
	LogFailure(ctx context.Context, severity Severity, message string, cause error)
}

// FailureLoggerFunc adapts a function to FailureLogger.
type FailureLoggerFunc func(ctx context.Context, severity Severity, message string, cause error)

// LogFailure calls f.
func (f FailureLoggerFunc) LogFailure(ctx context.Context, severity Severity, message string, cause error) {
	f(ctx, severity, message, cause)
}

// NopLogger discards failures.
type NopLogger struct{}

// LogFailure does nothing.
func (NopLogger) LogFailure(context.Context, Severity, string, error) {}
