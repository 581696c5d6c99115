// Package metric exports dictionary metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	pc := metric.NewPrometheusCollector("ingest")
//	reg.MustRegister(pc)
//	d, _ := memdict.NewFloat32(alloc, cfg, memdict.WithMetricsCollector(pc))
package metric
