package ledger

type entry struct {
	offset int
	length int
	prev   *entry
	next   *entry
}

// Ledger is a FIFO of (offset, length) reservations.
type Ledger struct {
	head *entry
	tail *entry
	len  int
	free *entry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Len returns the number of outstanding reservations.
func (l *Ledger) Len() int {
	return l.len
}

// PushBack records a reservation of length elements starting at offset.
// Zero-length reservations are not recorded.
func (l *Ledger) PushBack(offset, length int) {
	if length <= 0 {
		return
	}

	e := l.alloc()
	e.offset = offset
	e.length = length
	if l.len == 0 {
		l.head = e
		l.tail = e
	} else {
		e.prev = l.tail
		l.tail.next = e
		l.tail = e
	}
	l.len++
}

// FrontAligned reports whether the oldest reservations sum to exactly n.
func (l *Ledger) FrontAligned(n int) bool {
	if n == 0 {
		return true
	}
	sum := 0
	for e := l.head; e != nil; e = e.next {
		sum += e.length
		if sum == n {
			return true
		}
		if sum > n {
			return false
		}
	}
	return false
}

// BackAligned reports whether the newest reservations sum to exactly n.
func (l *Ledger) BackAligned(n int) bool {
	if n == 0 {
		return true
	}
	sum := 0
	for e := l.tail; e != nil; e = e.prev {
		sum += e.length
		if sum == n {
			return true
		}
		if sum > n {
			return false
		}
	}
	return false
}

// PopFront removes the oldest reservations covering n elements and returns how
// many entries were closed. The caller checks FrontAligned first.
func (l *Ledger) PopFront(n int) int {
	closed := 0
	for n > 0 && l.head != nil {
		current := l.head
		next := current.next
		if next != nil {
			next.prev = nil
		} else {
			l.tail = nil
		}
		l.head = next
		l.len--
		n -= current.length
		l.release(current)
		closed++
	}
	return closed
}

// PopBack removes the newest reservations covering n elements and returns how
// many entries were closed. The caller checks BackAligned first.
func (l *Ledger) PopBack(n int) int {
	closed := 0
	for n > 0 && l.tail != nil {
		current := l.tail
		prev := current.prev
		if prev != nil {
			prev.next = nil
		} else {
			l.head = nil
		}
		l.tail = prev
		l.len--
		n -= current.length
		l.release(current)
		closed++
	}
	return closed
}

// Reset drops every outstanding reservation.
func (l *Ledger) Reset() {
	for l.head != nil {
		current := l.head
		l.head = current.next
		l.release(current)
	}
	l.tail = nil
	l.len = 0
}

func (l *Ledger) alloc() *entry {
	if l.free == nil {
		return &entry{}
	}
	e := l.free
	l.free = e.next
	e.next = nil
	return e
}

func (l *Ledger) release(e *entry) {
	e.prev = nil
	e.offset = 0
	e.length = 0
	e.next = l.free
	l.free = e
}
