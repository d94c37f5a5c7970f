package observability

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chairlinked/api/internal/platform/requestctx"
)

// LogSettings selects the level and encoding of the process logger. The
// logger is built before configuration loads, so it reads the environment
// directly.
type LogSettings struct {
	Level string
	// Console switches to a human readable encoder for local runs.
	Console bool
}

// LogSettingsFromEnv reads CHAIRLINKED_LOG_LEVEL (or LOG_LEVEL) and turns on
// console output when CHAIRLINKED_ENVIRONMENT is local or dev.
func LogSettingsFromEnv(getenv func(string) string) LogSettings {
	if getenv == nil {
		getenv = os.Getenv
	}
	level := getenv("CHAIRLINKED_LOG_LEVEL")
	if strings.TrimSpace(level) == "" {
		level = getenv("LOG_LEVEL")
	}
	switch strings.ToLower(strings.TrimSpace(getenv("CHAIRLINKED_ENVIRONMENT"))) {
	case "local", "dev", "development":
		return LogSettings{Level: level, Console: true}
	}
	return LogSettings{Level: level}
}

// NewLogger builds the process logger. JSON output uses the field names Cloud
// Logging parses, so severity and timestamps survive ingestion.
func NewLogger(settings LogSettings) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if lvl := strings.ToLower(strings.TrimSpace(settings.Level)); lvl != "" {
		if err := level.UnmarshalText([]byte(lvl)); err != nil {
			level.SetLevel(zapcore.InfoLevel)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig = zapcore.EncoderConfig{
		MessageKey:     "message",
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:    encodeSeverity,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if settings.Console {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}

// encodeSeverity maps zap levels onto Cloud Logging severities.
func encodeSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString("DEBUG")
	case zapcore.InfoLevel:
		enc.AppendString("INFO")
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.ErrorLevel:
		enc.AppendString("ERROR")
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		enc.AppendString("CRITICAL")
	default:
		enc.AppendString("EMERGENCY")
	}
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return requestctx.WithLogger(ctx, logger)
}

// FromContext returns the request logger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	return requestctx.Logger(ctx)
}

// EventLogger is the structured logging hook injected into services.
type EventLogger func(ctx context.Context, event string, fields map[string]any)

// NewEventLogger adapts a named zap logger to EventLogger. A request logger on
// the context wins so request ids and annotations are kept. Events carrying
// an "error" field are logged as warnings.
func NewEventLogger(base *zap.Logger, name string) EventLogger {
	if base == nil {
		base = zap.NewNop()
	}
	named := base.Named(name)
	return func(ctx context.Context, event string, fields map[string]any) {
		logger := named
		if ctxLogger := requestctx.Logger(ctx); ctxLogger != requestctx.NoopLogger() {
			logger = ctxLogger.Named(name)
		}
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, redactContact(key, value)))
		}
		if _, failed := fields["error"]; failed {
			logger.Warn(event, zapFields...)
			return
		}
		logger.Info(event, zapFields...)
	}
}

// RedisLogger routes go-redis internal messages (pool and reconnect noise)
// through zap at warn level.
type RedisLogger struct {
	logger *zap.SugaredLogger
}

func NewRedisLogger(logger *zap.Logger) RedisLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return RedisLogger{logger: logger.Named("redis").Sugar()}
}

func (a RedisLogger) Printf(_ context.Context, format string, args ...any) {
	a.logger.Warnf(format, args...)
}
