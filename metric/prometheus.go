package metric

import (
	"time"

	"github.com/hupe1980/memdict"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements memdict.MetricsCollector with per-column
// Prometheus series. It is itself a prometheus.Collector, so one instance
// can be registered on any registry.
type PrometheusCollector struct {
	indexLatency  *prometheus.HistogramVec
	values        *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	reservedBytes *prometheus.GaugeVec
	overflowLen   *prometheus.GaugeVec
	closes        prometheus.Counter
}

var _ memdict.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates a collector whose metric names start with namespace.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		indexLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dictionary_index_latency_seconds",
			Help:      "Latency of dictionary index operations",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"column", "status"}),
		values: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dictionary_values_total",
			Help:      "Values indexed, by whether a new id was assigned",
		}, []string{"column", "result"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dictionary_lookups_total",
			Help:      "Dictionary id lookups",
		}, []string{"column", "result"}),
		reservedBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dictionary_value_store_reserved_bytes",
			Help:      "Bytes reserved by the value store",
		}, []string{"column"}),
		overflowLen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dictionary_overflow_entries",
			Help:      "Entries in the identity index overflow list",
		}, []string{"column"}),
		closes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dictionary_closed_total",
			Help:      "Dictionaries closed",
		}),
	}
}

// Describe implements prometheus.Collector.
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	p.indexLatency.Describe(ch)
	p.values.Describe(ch)
	p.lookups.Describe(ch)
	p.reservedBytes.Describe(ch)
	p.overflowLen.Describe(ch)
	p.closes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	p.indexLatency.Collect(ch)
	p.values.Collect(ch)
	p.lookups.Collect(ch)
	p.reservedBytes.Collect(ch)
	p.overflowLen.Collect(ch)
	p.closes.Collect(ch)
}

// RecordIndex implements memdict.MetricsCollector.
func (p *PrometheusCollector) RecordIndex(column string, added bool, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.indexLatency.WithLabelValues(column, status).Observe(d.Seconds())
	if err != nil {
		return
	}

	result := "existing"
	if added {
		result = "added"
	}
	p.values.WithLabelValues(column, result).Inc()
}

// RecordLookup implements memdict.MetricsCollector.
func (p *PrometheusCollector) RecordLookup(column string, found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	p.lookups.WithLabelValues(column, result).Inc()
}

// RecordGrow implements memdict.MetricsCollector.
func (p *PrometheusCollector) RecordGrow(column string, bytes int64) {
	p.reservedBytes.WithLabelValues(column).Set(float64(bytes))
}

// RecordOverflow implements memdict.MetricsCollector.
func (p *PrometheusCollector) RecordOverflow(column string, n int) {
	p.overflowLen.WithLabelValues(column).Set(float64(n))
}

// RecordClose implements memdict.MetricsCollector. The column's gauges are
// removed so sealed segments do not leave stale series behind.
func (p *PrometheusCollector) RecordClose(column string, _ int, _ int64) {
	p.closes.Inc()
	p.reservedBytes.DeleteLabelValues(column)
	p.overflowLen.DeleteLabelValues(column)
}
