// Package telemetry collects counters for rings and commit groups.
//
// RingMetrics is always on and built from atomics so that Stats can be read
// from any goroutine. Exporter mirrors the same events into Prometheus when a
// registerer is supplied. GroupCommitMetrics records attempts, failures and
// durations of one commit group and can be registered with Prometheus.
package telemetry
