package telemetry

import "sync/atomic"

// RingMetrics counts protocol operations on a single ring.
type RingMetrics struct {
	reserves   atomic.Uint64
	commits    atomic.Uint64
	unreserves atomic.Uint64
	peeks      atomic.Uint64
	consumes   atomic.Uint64
	resets     atomic.Uint64
	rejections atomic.Uint64
	splits     atomic.Uint64

	reservedElements  atomic.Uint64
	committedElements atomic.Uint64
	consumedElements  atomic.Uint64
}

// RingSnapshot is a point-in-time copy of RingMetrics.
type RingSnapshot struct {
	Reserves   uint64
	Commits    uint64
	Unreserves uint64
	Peeks      uint64
	Consumes   uint64
	Resets     uint64
	Rejections uint64
	// Splits counts views that had to be materialised as two ranges.
	Splits uint64

	ReservedElements  uint64
	CommittedElements uint64
	ConsumedElements  uint64
}

func (m *RingMetrics) RecordReserve(n int, split bool) {
	m.reserves.Add(1)
	m.reservedElements.Add(uint64(n))
	if split {
		m.splits.Add(1)
	}
}

func (m *RingMetrics) RecordCommit(n int) {
	m.commits.Add(1)
	m.committedElements.Add(uint64(n))
}

func (m *RingMetrics) RecordUnreserve() {
	m.unreserves.Add(1)
}

func (m *RingMetrics) RecordPeek(split bool) {
	m.peeks.Add(1)
	if split {
		m.splits.Add(1)
	}
}

func (m *RingMetrics) RecordConsume(n int) {
	m.consumes.Add(1)
	m.consumedElements.Add(uint64(n))
}

func (m *RingMetrics) RecordReset() {
	m.resets.Add(1)
}

func (m *RingMetrics) RecordRejection() {
	m.rejections.Add(1)
}

// Snapshot returns the current counter values.
func (m *RingMetrics) Snapshot() RingSnapshot {
	return RingSnapshot{
		Reserves:          m.reserves.Load(),
		Commits:           m.commits.Load(),
		Unreserves:        m.unreserves.Load(),
		Peeks:             m.peeks.Load(),
		Consumes:          m.consumes.Load(),
		Resets:            m.resets.Load(),
		Rejections:        m.rejections.Load(),
		Splits:            m.splits.Load(),
		ReservedElements:  m.reservedElements.Load(),
		CommittedElements: m.committedElements.Load(),
		ConsumedElements:  m.consumedElements.Load(),
	}
}
