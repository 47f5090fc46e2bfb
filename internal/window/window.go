package window

// Range is a half-open interval [Start, End) of backing store indices.
type Range struct {
	Start int
	End   int
}

// Empty reports whether the range covers no elements.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Split returns the ranges backing n elements starting at cursor in a store of
// the given capacity. second is empty unless the window wraps.
//
// The caller validates n against capacity and its counts; cursor must lie in
// [0, capacity).
func Split(capacity, cursor, n int) (first, second Range) {
	remaining := capacity - cursor
	if n <= remaining {
		return Range{Start: cursor, End: cursor + n}, Range{}
	}
	return Range{Start: cursor, End: capacity}, Range{Start: 0, End: n - remaining}
}

// Advance moves cursor forward by n, modulo capacity.
func Advance(cursor, n, capacity int) int {
	cursor += n
	if cursor >= capacity {
		cursor -= capacity
	}
	return cursor
}

// Retreat moves cursor back by n, modulo capacity.
func Retreat(cursor, n, capacity int) int {
	cursor -= n
	if cursor < 0 {
		cursor += capacity
	}
	return cursor
}
