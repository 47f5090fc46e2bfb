package telemetry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const groupSubsystem = "group"

// GroupCommitMetrics counts the group commits of one commit group. The zero
// value is ready to use.
type GroupCommitMetrics struct {
	attempts  atomic.Uint64
	failures  atomic.Uint64
	elements  atomic.Uint64
	busyNanos atomic.Int64
}

// GroupCommitSnapshot is a point-in-time copy of GroupCommitMetrics.
type GroupCommitSnapshot struct {
	Attempts        uint64
	Failures        uint64
	Elements        uint64
	AverageDuration time.Duration
}

// Begin records the start of a commit of n elements on each of members rings.
// The returned function must be called once with the outcome.
func (m *GroupCommitMetrics) Begin(members, n int) func(error) {
	start := time.Now()
	m.attempts.Add(1)
	return func(err error) {
		m.busyNanos.Add(time.Since(start).Nanoseconds())
		switch {
		case err != nil:
			m.failures.Add(1)
		case members > 0 && n > 0:
			m.elements.Add(uint64(members) * uint64(n))
		}
	}
}

// Snapshot returns the current counters.
func (m *GroupCommitMetrics) Snapshot() GroupCommitSnapshot {
	s := GroupCommitSnapshot{
		Attempts: m.attempts.Load(),
		Failures: m.failures.Load(),
		Elements: m.elements.Load(),
	}
	if s.Attempts > 0 {
		s.AverageDuration = time.Duration(m.busyNanos.Load() / int64(s.Attempts))
	}
	return s
}

// Register exposes the counters to Prometheus under the group label name.
// Collectors registered before a failure are unregistered again.
func (m *GroupCommitMetrics) Register(reg prometheus.Registerer, name string) error {
	labels := prometheus.Labels{"group": name}
	counter := func(metric, help string, value func() float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   groupSubsystem,
			Name:        metric,
			ConstLabels: labels,
			Help:        help,
		}, value)
	}

	collectors := []prometheus.Collector{
		counter("commits_total", "Group commits attempted", func() float64 {
			return float64(m.attempts.Load())
		}),
		counter("failures_total", "Group commits that returned an error", func() float64 {
			return float64(m.failures.Load())
		}),
		counter("elements_total", "Elements published across all members", func() float64 {
			return float64(m.elements.Load())
		}),
		counter("commit_seconds_total", "Time spent in group commits", func() float64 {
			return time.Duration(m.busyNanos.Load()).Seconds()
		}),
	}

	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return fmt.Errorf("register group %q metrics: %w", name, err)
		}
	}
	return nil
}
