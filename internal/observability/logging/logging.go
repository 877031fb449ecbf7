// Package logging wraps zap with VectorBid-specific field conventions and
// PII redaction, generalizing the teacher's
// common/libraries/go/iaros-core/logging.go.
package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the context key carrying the current request ID.
type ctxKey string

const RequestIDKey ctxKey = "request_id"

// Config controls logger construction.
type Config struct {
	Level       string
	ServiceName string
	Version     string
	Environment string
	Format      string // json or console
}

// Logger wraps zap.Logger with request-scoped helpers.
type Logger struct {
	*zap.Logger
	serviceName string
}

// New builds a Logger whose core is wrapped in a redacting decorator
// (see redact.go) so that email/name/pilot_id fields are hashed before
// they ever reach the sink — spec.md §9 "PII in logs".
func New(cfg Config) *Logger {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Environment == "" {
		cfg.Environment = getEnv("VECTORBID_ENV", "development")
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	core = newRedactingCore(core)

	base := zap.New(core, zap.AddCaller())
	base = base.With(
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Environment),
	)

	return &Logger{Logger: base, serviceName: cfg.ServiceName}
}

// WithRequestID attaches a request_id field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("request_id", requestID)), serviceName: l.serviceName}
}

// WithContext extracts a request ID from ctx, if present, and attaches it.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return l.WithRequestID(id)
	}
	return l
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
