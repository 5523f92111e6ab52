// Package logger builds the process-wide zap logger.
package logger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type runIDKey struct{}

// New returns a JSON logger writing to stderr at level, with timestamps
// rendered in loc.
func New(level string, loc *time.Location) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL %q: %w", level, err)
	}
	if loc == nil {
		loc = time.Local
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.FunctionKey = "function_name"
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339))
	}
	return cfg.Build()
}

// WithRunID returns a context carrying the run correlation id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext extracts the run id from the context.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey{}).(string); ok {
		return v
	}
	return ""
}

// FromContext returns base with the run id attached, if any.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if id := RunIDFromContext(ctx); id != "" {
		return base.With(zap.String("run_id", id))
	}
	return base
}
