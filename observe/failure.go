package observe

import (
	"context"
	"errors"

	"github.com/jonwraymond/trylite/resilience"
)

// failureLogger adapts a Logger to resilience.FailureLogger.
type failureLogger struct {
	logger Logger
}

// NewFailureLogger returns a resilience.FailureLogger that writes warnings
// and errors to l. The cause, when present, is attached as the "error" field
// and its unwrap chain as "cause_chain".
func NewFailureLogger(l Logger) resilience.FailureLogger {
	if l == nil {
		return resilience.NopLogger{}
	}
	return &failureLogger{logger: l}
}

func (f *failureLogger) LogFailure(ctx context.Context, severity resilience.Severity, message string, cause error) {
	var fields []Field
	if cause != nil {
		fields = append(fields,
			Field{Key: "error", Value: cause.Error()},
			Field{Key: "cause_chain", Value: causeChain(cause)},
		)
	}

	switch severity {
	case resilience.SeverityWarn:
		f.logger.Warn(ctx, message, fields...)
	default:
		f.logger.Error(ctx, message, fields...)
	}
}

// causeChain lists the messages of err and every error it wraps, outermost
// first. Joined errors contribute only their combined message.
func causeChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}
