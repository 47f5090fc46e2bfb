package nocopyring

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/timzifer/nocopy_ring/internal/ledger"
	"github.com/timzifer/nocopy_ring/internal/telemetry"
	"github.com/timzifer/nocopy_ring/internal/window"
)

// Stats is a snapshot of a ring's operation counters.
type Stats = telemetry.RingSnapshot

// Ring is a fixed-capacity circular buffer with a reserve/commit write
// protocol and a peek/consume read protocol.
//
// The backing store is split into three regions that never move: committed
// elements starting at the read cursor, reserved elements ending at the write
// cursor, and free space. Reserve and PeekRead hand out views straight into the
// store, so producers and consumers never copy through an intermediate buffer.
//
// A Ring is not safe for concurrent use. One writer (Reserve, Commit,
// Unreserve) and one reader (PeekRead, ConsumeRead) may run on different
// goroutines only with external synchronisation; see Locked.
type Ring[T any] struct {
	buf []T

	readIndex  int
	writeIndex int
	reserved   int
	committed  int

	writeGen uint64
	readGen  uint64

	ledger   *ledger.Ledger
	stats    telemetry.RingMetrics
	exporter *telemetry.Exporter
	logger   *zap.Logger
}

// New allocates a ring holding capacity elements.
func New[T any](capacity int, opts ...Option) (*Ring[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	r := &Ring[T]{
		buf:    make([]T, capacity),
		logger: o.logger.With(zap.Int("capacity", capacity)),
	}
	if o.strict {
		r.ledger = ledger.New()
	}
	if o.registerer != nil {
		exporter, err := telemetry.NewExporter(o.registerer, o.name)
		if err != nil {
			return nil, err
		}
		exporter.ObserveLevels(0, 0, capacity)
		r.exporter = exporter
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](capacity int, opts ...Option) *Ring[T] {
	r, err := New[T](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Capacity returns the fixed number of elements the ring holds.
func (r *Ring[T]) Capacity() int {
	return len(r.buf)
}

// Reservable returns the number of elements that can currently be reserved.
func (r *Ring[T]) Reservable() int {
	return len(r.buf) - r.reserved - r.committed
}

// Committable returns the number of reserved elements awaiting Commit.
func (r *Ring[T]) Committable() int {
	return r.reserved
}

// Readable returns the number of committed elements awaiting ConsumeRead.
func (r *Ring[T]) Readable() int {
	return r.committed
}

// Stats returns a snapshot of the ring's operation counters.
func (r *Ring[T]) Stats() Stats {
	return r.stats.Snapshot()
}

// StrictCommit reports whether the ring was created with WithStrictCommit.
func (r *Ring[T]) StrictCommit() bool {
	return r.ledger != nil
}

func (r *Ring[T]) writer() any {
	return r
}

// Reserve hands the writer a view of n free elements starting at the write
// cursor and advances the cursor past them. The view may be split in two when
// it crosses the end of the store. Successive reservations are queued and must
// be committed in the order they were made.
func (r *Ring[T]) Reserve(n int) (View[T], error) {
	if err := r.limitError(telemetry.OpReserve, n, r.Reservable(), ErrInsufficientReservableSpace); err != nil {
		return View[T]{}, r.reject(err)
	}

	r.writeGen++
	v := r.materialize(r.writeIndex, n, &r.writeGen)
	if r.ledger != nil {
		r.ledger.PushBack(r.writeIndex, n)
	}
	r.writeIndex = window.Advance(r.writeIndex, n, len(r.buf))
	r.reserved += n

	r.stats.RecordReserve(n, v.IsSplit())
	r.observe(telemetry.OpReserve, n, v.IsSplit())
	return v, nil
}

// Commit turns the oldest n reserved elements into readable elements. Only
// counts change; no data moves.
func (r *Ring[T]) Commit(n int) error {
	if err := r.commitError(n); err != nil {
		return r.reject(err)
	}

	if r.ledger != nil {
		r.ledger.PopFront(n)
	}
	r.writeGen++
	r.committed += n
	r.reserved -= n

	r.stats.RecordCommit(n)
	r.observe(telemetry.OpCommit, n, false)
	return nil
}

// CanCommit reports whether Commit(n) would succeed. It changes nothing and
// does not count as a rejection.
func (r *Ring[T]) CanCommit(n int) error {
	if err := r.commitError(n); err != nil {
		return err
	}
	return nil
}

// Unreserve returns the newest n reserved elements to the free pool and moves
// the write cursor back over them. Producers use it when fewer elements were
// written than reserved.
func (r *Ring[T]) Unreserve(n int) error {
	if err := r.limitError(telemetry.OpUnreserve, n, r.reserved, ErrInsufficientCommittableSpace); err != nil {
		return r.reject(err)
	}
	if r.ledger != nil && !r.ledger.BackAligned(n) {
		return r.reject(spaceError(telemetry.OpUnreserve, ErrPartialCommit, n, r.reserved))
	}

	if r.ledger != nil {
		r.ledger.PopBack(n)
	}
	r.writeGen++
	r.writeIndex = window.Retreat(r.writeIndex, n, len(r.buf))
	r.reserved -= n

	r.stats.RecordUnreserve()
	r.observe(telemetry.OpUnreserve, n, false)
	return nil
}

// PeekRead returns a view of the n oldest committed elements without consuming
// them.
func (r *Ring[T]) PeekRead(n int) (View[T], error) {
	if err := r.limitError(telemetry.OpPeek, n, r.committed, ErrInsufficientReadableSpace); err != nil {
		return View[T]{}, r.reject(err)
	}

	v := r.materialize(r.readIndex, n, &r.readGen)

	r.stats.RecordPeek(v.IsSplit())
	if r.exporter != nil {
		r.exporter.ObserveOperation(telemetry.OpPeek, n, v.IsSplit())
	}
	return v, nil
}

// ConsumeRead advances the read cursor past n committed elements and returns
// them to the free pool.
func (r *Ring[T]) ConsumeRead(n int) error {
	if err := r.limitError(telemetry.OpConsume, n, r.committed, ErrInsufficientReadableSpace); err != nil {
		return r.reject(err)
	}

	r.readGen++
	r.readIndex = window.Advance(r.readIndex, n, len(r.buf))
	// Without this decrement consumed space is never reclaimed.
	r.committed -= n

	r.stats.RecordConsume(n)
	r.observe(telemetry.OpConsume, n, false)
	return nil
}

// Write copies src into the ring with a single Reserve and Commit. It fails
// with ErrOutstandingReservations if earlier reservations are uncommitted,
// since Commit would otherwise publish those first.
func (r *Ring[T]) Write(src []T) error {
	if r.reserved > 0 {
		return r.reject(spaceError("write", ErrOutstandingReservations, len(src), 0))
	}
	v, err := r.Reserve(len(src))
	if err != nil {
		return err
	}
	if _, err := v.CopyFrom(src); err != nil {
		return err
	}
	return r.Commit(len(src))
}

// Read copies exactly len(dst) committed elements into dst and consumes them.
func (r *Ring[T]) Read(dst []T) error {
	v, err := r.PeekRead(len(dst))
	if err != nil {
		return err
	}
	if _, err := v.CopyTo(dst); err != nil {
		return err
	}
	return r.ConsumeRead(len(dst))
}

// Reset empties the ring and invalidates every outstanding view. Storage is
// neither reallocated nor cleared.
func (r *Ring[T]) Reset() {
	r.readIndex = 0
	r.writeIndex = 0
	r.reserved = 0
	r.committed = 0
	r.writeGen++
	r.readGen++
	if r.ledger != nil {
		r.ledger.Reset()
	}

	r.stats.RecordReset()
	r.observe(telemetry.OpReset, 0, false)
	r.logger.Debug("ring reset")
}

func (r *Ring[T]) materialize(cursor, n int, gen *uint64) View[T] {
	first, second := window.Split(len(r.buf), cursor, n)
	var tail []T
	if !second.Empty() {
		tail = r.buf[second.Start:second.End:second.End]
	}
	return newView(r.buf[first.Start:first.End:first.End], tail, gen)
}

func (r *Ring[T]) limitError(op string, n, available int, short error) *SpaceError {
	switch {
	case n < 0:
		return spaceError(op, ErrInvalidLength, n, available)
	case n > len(r.buf):
		return spaceError(op, ErrRequestExceedsCapacity, n, len(r.buf))
	case n > available:
		return spaceError(op, short, n, available)
	}
	return nil
}

func (r *Ring[T]) commitError(n int) *SpaceError {
	if err := r.limitError(telemetry.OpCommit, n, r.reserved, ErrInsufficientCommittableSpace); err != nil {
		return err
	}
	if r.ledger != nil && !r.ledger.FrontAligned(n) {
		return spaceError(telemetry.OpCommit, ErrPartialCommit, n, r.reserved)
	}
	return nil
}

func (r *Ring[T]) reject(err *SpaceError) error {
	r.stats.RecordRejection()
	if r.exporter != nil {
		r.exporter.ObserveRejection(err.Op, reason(err.Err))
	}
	if ce := r.logger.Check(zapcore.DebugLevel, "ring operation rejected"); ce != nil {
		ce.Write(
			zap.String("op", err.Op),
			zap.Int("requested", err.Requested),
			zap.Int("available", err.Available),
			zap.Error(err.Err),
		)
	}
	return err
}

func (r *Ring[T]) observe(op string, n int, split bool) {
	if r.exporter == nil {
		return
	}
	r.exporter.ObserveOperation(op, n, split)
	r.exporter.ObserveLevels(r.reserved, r.committed, len(r.buf))
}
