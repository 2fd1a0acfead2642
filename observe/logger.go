package observe

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// zapLogger is the zap-backed structured logger.
type zapLogger struct {
	logger *zap.Logger
}

// NewLogger creates a JSON logger writing to stderr at the given level.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a JSON logger with a custom writer. Writes are
// serialized, so w may be shared between goroutines.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	core := zapcore.NewCore(
		newEncoder("json"),
		zapcore.Lock(zapcore.AddSync(w)),
		ParseLogLevel(level).zapLevel(),
	)
	return &zapLogger{logger: zap.New(core)}
}

// NewFileLogger creates a JSON logger appending to the file at path.
func NewFileLogger(level, path string) (Logger, error) {
	sink, _, err := zap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	core := zapcore.NewCore(newEncoder("json"), sink, ParseLogLevel(level).zapLevel())
	return &zapLogger{logger: zap.New(core)}, nil
}

// NewLoggerFromConfig builds a logger writing to w, os.Stderr when nil, and,
// when cfg.File is set, to that file as well. The file always uses the JSON
// encoding.
func NewLoggerFromConfig(cfg LoggingConfig, w io.Writer) (Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level := ParseLogLevel(cfg.Level).zapLevel()

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(cfg.Format), zapcore.Lock(zapcore.AddSync(w)), level),
	}

	if cfg.File != "" {
		sink, _, err := zap.Open(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		cores = append(cores, zapcore.NewCore(newEncoder("json"), sink, level))
	}

	return &zapLogger{logger: zap.New(zapcore.NewTee(cores...))}, nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "msg",
		NameKey:        zapcore.OmitKey,
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		StacktraceKey:  zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	if format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

// WithOperation returns a logger with operation context attached.
func (l *zapLogger) WithOperation(meta OperationMeta) Logger {
	fields := []zap.Field{
		zap.String("operation.id", meta.OperationID()),
		zap.String("operation.name", meta.Name),
	}
	if meta.Namespace != "" {
		fields = append(fields, zap.String("operation.namespace", meta.Namespace))
	}
	if meta.Strategy != "" {
		fields = append(fields, zap.String("operation.strategy", meta.Strategy))
	}

	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.logger.Info(msg, convertFields(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.logger.Warn(msg, convertFields(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.logger.Error(msg, convertFields(ctx, fields)...)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.logger.Debug(msg, convertFields(ctx, fields)...)
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// convertFields maps fields to zap, redacting sensitive keys and adding the
// active span's identifiers.
func convertFields(ctx context.Context, fields []Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+2)

	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			zapFields = append(zapFields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
	}

	for _, f := range fields {
		if isRedactedField(f.Key) {
			zapFields = append(zapFields, zap.String(f.Key, "[REDACTED]"))
			continue
		}
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	return zapFields
}

// isRedactedField returns true if the field should be redacted.
func isRedactedField(key string) bool {
	for _, k := range RedactedFields {
		if k == key {
			return true
		}
	}
	return false
}

// ExtendedLogger exposes the underlying zap logger for callers that need
// zap-specific features.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: the returned *zap.Logger shares cores with the Logger.
type ExtendedLogger interface {
	Logger
	Zap() *zap.Logger
}

// Zap returns the underlying zap logger.
func (l *zapLogger) Zap() *zap.Logger {
	return l.logger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{logger: l}
}

// Ensure zapLogger implements ExtendedLogger
var _ ExtendedLogger = (*zapLogger)(nil)
