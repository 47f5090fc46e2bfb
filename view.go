package nocopyring

import "fmt"

// View is a borrowed window into a ring's backing store. It is either one
// contiguous segment or, when the window crosses the physical end of the
// store, two segments whose concatenation is the logical window.
//
// A view returned by Reserve stays valid until the next Reserve, Commit,
// Unreserve or Reset. A view returned by PeekRead stays valid until the next
// ConsumeRead or Reset. Calls on the other side of the ring do not invalidate
// it. The zero View is never valid.
type View[T any] struct {
	first  []T
	second []T

	gen    *uint64
	issued uint64
}

func newView[T any](first, second []T, gen *uint64) View[T] {
	return View[T]{first: first, second: second, gen: gen, issued: *gen}
}

// Len returns the number of elements in the window.
func (v View[T]) Len() int {
	return len(v.first) + len(v.second)
}

// IsSplit reports whether the window wraps around the end of the store.
func (v View[T]) IsSplit() bool {
	return len(v.second) > 0
}

// Valid reports whether the view may still be used.
func (v View[T]) Valid() bool {
	return v.gen != nil && *v.gen == v.issued
}

// Err returns ErrStaleView if the view has been invalidated.
func (v View[T]) Err() error {
	if !v.Valid() {
		return ErrStaleView
	}
	return nil
}

// Segments returns the backing slices in logical order. second is nil unless
// the view is split. It panics if the view is no longer valid.
func (v View[T]) Segments() (first, second []T) {
	v.mustBeValid()
	return v.first, v.second
}

// At returns the i-th element of the logical window.
func (v View[T]) At(i int) T {
	v.mustBeValid()
	if i < len(v.first) {
		return v.first[i]
	}
	return v.second[i-len(v.first)]
}

// Set stores value as the i-th element of the logical window. Only writer
// views should be written to.
func (v View[T]) Set(i int, value T) {
	v.mustBeValid()
	if i < len(v.first) {
		v.first[i] = value
		return
	}
	v.second[i-len(v.first)] = value
}

// CopyFrom copies src into the window and returns the number of elements
// copied, which is the minimum of len(src) and Len.
func (v View[T]) CopyFrom(src []T) (int, error) {
	if !v.Valid() {
		return 0, ErrStaleView
	}
	n := copy(v.first, src)
	n += copy(v.second, src[n:])
	return n, nil
}

// CopyTo copies the window into dst and returns the number of elements copied.
func (v View[T]) CopyTo(dst []T) (int, error) {
	if !v.Valid() {
		return 0, ErrStaleView
	}
	n := copy(dst, v.first)
	n += copy(dst[n:], v.second)
	return n, nil
}

func (v View[T]) mustBeValid() {
	if !v.Valid() {
		panic(fmt.Errorf("%w (issued at generation %d)", ErrStaleView, v.issued))
	}
}
