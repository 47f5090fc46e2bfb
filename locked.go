package nocopyring

import "sync"

// Locked guards a Ring with a mutex so that a writer goroutine and a reader
// goroutine can drive it concurrently. Views returned by Reserve and PeekRead
// may be filled or drained outside the lock: reader calls never invalidate
// writer views and writer calls never invalidate reader views.
//
// Locked does not make the protocol multi-writer safe; two goroutines sharing
// the writer side must still agree on reservation order.
type Locked[T any] struct {
	mu   sync.Mutex
	ring *Ring[T]
}

// NewLocked wraps r. The caller must stop using r directly.
func NewLocked[T any](r *Ring[T]) *Locked[T] {
	return &Locked[T]{ring: r}
}

func (l *Locked[T]) writer() any {
	return l.ring
}

func (l *Locked[T]) Capacity() int {
	return l.ring.Capacity()
}

func (l *Locked[T]) Reservable() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Reservable()
}

func (l *Locked[T]) Committable() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Committable()
}

func (l *Locked[T]) Readable() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Readable()
}

func (l *Locked[T]) Reserve(n int) (View[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Reserve(n)
}

// ReserveUpTo reserves min(limit, Reservable()) elements. It returns an empty
// view when the ring is full.
func (l *Locked[T]) ReserveUpTo(limit int) (View[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Reserve(min(limit, l.ring.Reservable()))
}

func (l *Locked[T]) Commit(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Commit(n)
}

func (l *Locked[T]) Unreserve(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Unreserve(n)
}

func (l *Locked[T]) PeekRead(n int) (View[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.PeekRead(n)
}

// PeekAll returns a view of every committed element.
func (l *Locked[T]) PeekAll() (View[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.PeekRead(l.ring.Readable())
}

func (l *Locked[T]) ConsumeRead(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.ConsumeRead(n)
}

func (l *Locked[T]) Write(src []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Write(src)
}

func (l *Locked[T]) Read(dst []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Read(dst)
}

func (l *Locked[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring.Reset()
}

func (l *Locked[T]) Stats() Stats {
	return l.ring.Stats()
}

func (l *Locked[T]) CanCommit(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.CanCommit(n)
}
