package nocopyring

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Ring.
type Option func(*options)

type options struct {
	logger *zap.Logger

	registerer prometheus.Registerer
	name       string

	strict bool
}

// WithLogger sets the logger used for rejected operations and resets. The
// default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics exports the ring's counters and occupancy gauges to reg under the
// label ring=name. Ignored when reg is nil or name is empty.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(o *options) {
		if reg != nil && name != "" {
			o.registerer = reg
			o.name = name
		}
	}
}

// WithStrictCommit makes the ring track each reservation. Commit must then
// close whole reservations in the order they were made, and Unreserve must
// release whole reservations from the newest end.
func WithStrictCommit() Option {
	return func(o *options) {
		o.strict = true
	}
}

func defaultOptions() options {
	return options{
		logger: zap.NewNop(),
	}
}
