package memdict

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see package metric).
//
// column is the dictionary's allocation context.
type MetricsCollector interface {
	// RecordIndex is called after each indexed value.
	// added reports whether a new ID was assigned, err is nil if successful.
	RecordIndex(column string, added bool, duration time.Duration, err error)

	// RecordLookup is called after each IndexOf/IndexOfText.
	RecordLookup(column string, found bool)

	// RecordGrow is called when the value store reserves more memory.
	// bytes is the total reserved after growth.
	RecordGrow(column string, bytes int64)

	// RecordOverflow is called whenever the overflow list length changes:
	// when an entry spills into it and when a new index level absorbs it.
	// n is the new overflow length.
	RecordOverflow(column string, n int)

	// RecordClose is called once when the dictionary is closed.
	RecordClose(column string, length int, bytes int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIndex(string, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordLookup(string, bool)                      {}
func (NoopMetricsCollector) RecordGrow(string, int64)                       {}
func (NoopMetricsCollector) RecordOverflow(string, int)                     {}
func (NoopMetricsCollector) RecordClose(string, int, int64)                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
// It aggregates across columns.
type BasicMetricsCollector struct {
	IndexCount      atomic.Int64
	IndexAdded      atomic.Int64
	IndexErrors     atomic.Int64
	IndexTotalNanos atomic.Int64
	LookupCount     atomic.Int64
	LookupHits      atomic.Int64
	GrowCount       atomic.Int64
	ReservedBytes   atomic.Int64
	OverflowLen     atomic.Int64
	CloseCount      atomic.Int64
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(_ string, added bool, duration time.Duration, err error) {
	b.IndexCount.Add(1)
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IndexErrors.Add(1)
		return
	}
	if added {
		b.IndexAdded.Add(1)
	}
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(_ string, found bool) {
	b.LookupCount.Add(1)
	if found {
		b.LookupHits.Add(1)
	}
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(_ string, bytes int64) {
	b.GrowCount.Add(1)
	b.ReservedBytes.Store(bytes)
}

// RecordOverflow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOverflow(_ string, n int) {
	b.OverflowLen.Store(int64(n))
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose(string, int, int64) {
	b.CloseCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IndexCount:    b.IndexCount.Load(),
		IndexAdded:    b.IndexAdded.Load(),
		IndexErrors:   b.IndexErrors.Load(),
		IndexAvgNanos: b.getAvgIndexNanos(),
		LookupCount:   b.LookupCount.Load(),
		LookupHits:    b.LookupHits.Load(),
		GrowCount:     b.GrowCount.Load(),
		ReservedBytes: b.ReservedBytes.Load(),
		OverflowLen:   b.OverflowLen.Load(),
		CloseCount:    b.CloseCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgIndexNanos() int64 {
	count := b.IndexCount.Load()
	if count == 0 {
		return 0
	}
	return b.IndexTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IndexCount    int64
	IndexAdded    int64
	IndexErrors   int64
	IndexAvgNanos int64
	LookupCount   int64
	LookupHits    int64
	GrowCount     int64
	ReservedBytes int64
	OverflowLen   int64
	CloseCount    int64
}
