package telemetry

import "testing"

func TestRingMetricsSnapshot(t *testing.T) {
	var m RingMetrics

	m.RecordReserve(4, true)
	m.RecordReserve(2, false)
	m.RecordCommit(6)
	m.RecordPeek(true)
	m.RecordConsume(3)
	m.RecordUnreserve()
	m.RecordRejection()
	m.RecordReset()

	s := m.Snapshot()
	if s.Reserves != 2 || s.ReservedElements != 6 {
		t.Fatalf("unexpected reserve counters: %+v", s)
	}
	if s.Commits != 1 || s.CommittedElements != 6 {
		t.Fatalf("unexpected commit counters: %+v", s)
	}
	if s.Peeks != 1 || s.Consumes != 1 || s.ConsumedElements != 3 {
		t.Fatalf("unexpected read counters: %+v", s)
	}
	if s.Splits != 2 {
		t.Fatalf("expected 2 split views, got %d", s.Splits)
	}
	if s.Unreserves != 1 || s.Rejections != 1 || s.Resets != 1 {
		t.Fatalf("unexpected misc counters: %+v", s)
	}
}
