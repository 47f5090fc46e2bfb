package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "nocopyring"
	subsystem = "ring"
)

// Operation labels used by Exporter.
const (
	OpReserve   = "reserve"
	OpCommit    = "commit"
	OpUnreserve = "unreserve"
	OpPeek      = "peek"
	OpConsume   = "consume"
	OpReset     = "reset"
)

// Exporter mirrors ring events into Prometheus collectors labelled with the
// ring name.
type Exporter struct {
	operations *prometheus.CounterVec
	elements   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	splits     prometheus.Counter

	reserved    prometheus.Gauge
	committed   prometheus.Gauge
	utilization prometheus.Gauge

	// resolved children so the hot path skips label lookups
	opCounters   map[string]prometheus.Counter
	elemCounters map[string]prometheus.Counter
}

// NewExporter creates the collectors for ring name and registers them with reg.
func NewExporter(reg prometheus.Registerer, name string) (*Exporter, error) {
	labels := prometheus.Labels{"ring": name}

	e := &Exporter{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "operations_total",
			ConstLabels: labels,
			Help:        "Total number of successful ring protocol operations",
		}, []string{"op"}),
		elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "elements_total",
			ConstLabels: labels,
			Help:        "Total number of elements moved by ring protocol operations",
		}, []string{"op"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "rejections_total",
			ConstLabels: labels,
			Help:        "Total number of rejected ring operations by reason",
		}, []string{"op", "reason"}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "split_views_total",
			ConstLabels: labels,
			Help:        "Total number of views that wrapped around the end of the ring",
		}),
		reserved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "reserved_elements",
			ConstLabels: labels,
			Help:        "Elements reserved by the writer and not yet committed",
		}),
		committed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "committed_elements",
			ConstLabels: labels,
			Help:        "Elements committed and not yet consumed",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "utilization",
			ConstLabels: labels,
			Help:        "Reserved plus committed elements as a fraction of capacity (0.0 to 1.0)",
		}),
	}

	collectors := []prometheus.Collector{
		e.operations, e.elements, e.rejections, e.splits,
		e.reserved, e.committed, e.utilization,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register ring %q metrics: %w", name, err)
		}
	}

	e.opCounters = make(map[string]prometheus.Counter)
	e.elemCounters = make(map[string]prometheus.Counter)
	for _, op := range []string{OpReserve, OpCommit, OpUnreserve, OpPeek, OpConsume, OpReset} {
		e.opCounters[op] = e.operations.WithLabelValues(op)
		e.elemCounters[op] = e.elements.WithLabelValues(op)
	}

	return e, nil
}

// ObserveOperation records a successful operation that moved n elements.
func (e *Exporter) ObserveOperation(op string, n int, split bool) {
	if c, ok := e.opCounters[op]; ok {
		c.Inc()
	}
	if n > 0 {
		if c, ok := e.elemCounters[op]; ok {
			c.Add(float64(n))
		}
	}
	if split {
		e.splits.Inc()
	}
}

// ObserveRejection records a rejected operation.
func (e *Exporter) ObserveRejection(op, reason string) {
	e.rejections.WithLabelValues(op, reason).Inc()
}

// ObserveLevels updates the occupancy gauges.
func (e *Exporter) ObserveLevels(reserved, committed, capacity int) {
	e.reserved.Set(float64(reserved))
	e.committed.Set(float64(committed))
	if capacity > 0 {
		e.utilization.Set(float64(reserved+committed) / float64(capacity))
	}
}
