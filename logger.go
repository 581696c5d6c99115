package memdict

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with dictionary-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithColumn adds the column (allocation context) field.
func (l *Logger) WithColumn(column string) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", column),
	}
}

// WithType adds the value type field.
func (l *Logger) WithType(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("type", name),
	}
}

// LogCreate logs dictionary construction.
func (l *Logger) LogCreate(ctx context.Context, buckets, slotsPerBucket, capacity int) {
	l.DebugContext(ctx, "dictionary created",
		"buckets", buckets,
		"slots_per_bucket", slotsPerBucket,
		"capacity", capacity,
	)
}

// LogGrow logs a value store growth step.
func (l *Logger) LogGrow(ctx context.Context, length, capacity int, reserved int64) {
	l.DebugContext(ctx, "value store grown",
		"length", length,
		"capacity", capacity,
		"reserved_bytes", reserved,
	)
}

// LogIndexGrow logs a new identity index level.
func (l *Logger) LogIndexGrow(ctx context.Context, levels, buckets int, before, after int64) {
	l.DebugContext(ctx, "identity index grown",
		"levels", levels,
		"buckets", buckets,
		"reserved_bytes_before", before,
		"reserved_bytes", after,
	)
}

// LogOverflow logs an overflow list past its configured threshold.
func (l *Logger) LogOverflow(ctx context.Context, overflow, threshold int) {
	l.WarnContext(ctx, "identity index overflow above threshold",
		"overflow", overflow,
		"threshold", threshold,
	)
}

// LogIndex logs a failed index operation.
func (l *Logger) LogIndex(ctx context.Context, length int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index failed",
			"length", length,
			"error", err,
		)
	}
}

// LogClose logs dictionary close with final statistics.
func (l *Logger) LogClose(ctx context.Context, length int, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"length", length,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "dictionary closed",
			"length", length,
			"off_heap_bytes", bytes,
		)
	}
}
