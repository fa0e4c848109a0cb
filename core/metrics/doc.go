// Package metrics exposes Prometheus metrics for the synchronizer.
//
// Metrics are registered on the default registry at package init and served
// by the `serve` command at /metrics. Callers record events through the
// Record* functions rather than touching collectors directly.
package metrics
