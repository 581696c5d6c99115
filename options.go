package memdict

import (
	"context"
)

type options struct {
	ctx              context.Context
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures dictionary construction.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &memdict.BasicMetricsCollector{}
//	d, _ := memdict.NewFloat32(alloc, cfg, memdict.WithMetricsCollector(metrics))
//	// ... ingest ...
//	stats := metrics.GetStats()
//	fmt.Printf("ids assigned: %d\n", stats.IndexAdded)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging (uses NoopLogger).
//
// Example:
//
//	logger := memdict.NewJSONLogger(slog.LevelDebug)
//	d, _ := memdict.NewString(alloc, cfg, memdict.WithLogger(logger))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithContext sets the context passed to the allocator on every allocation.
// Deadlines on it bound how long growth may wait for memory.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx == nil {
			ctx = context.Background()
		}
		o.ctx = ctx
	}
}

func defaultOptions() options {
	return options{
		ctx:              context.Background(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}
