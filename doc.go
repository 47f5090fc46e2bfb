// Package nocopyring provides a fixed-capacity circular buffer whose producer
// and consumer work directly on the buffer's memory.
//
// The writer asks for space with Reserve, fills the returned View in place and
// publishes it with Commit. The reader inspects committed data with PeekRead
// and releases it with ConsumeRead. A View covers one contiguous segment of the
// backing store, or two when the requested window wraps around its end:
//
//	r := nocopyring.MustNew[int16](4096)
//
//	v, err := r.Reserve(256)
//	if err != nil {
//		// errors.Is(err, nocopyring.ErrInsufficientReservableSpace)
//	}
//	first, second := v.Segments()
//	fill(first)
//	fill(second)
//	_ = r.Commit(256)
//
//	v, _ = r.PeekRead(r.Readable())
//	drain(v.Segments())
//	_ = r.ConsumeRead(v.Len())
//
// Insufficient space is never waited for; every operation either completes or
// returns a *SpaceError wrapping one of the package sentinels and leaves the
// ring unchanged.
//
// A Ring has no internal synchronisation. Wrap it in Locked when the writer and
// reader run on different goroutines, and use CommitGroup to publish the same
// amount on several rings at once.
package nocopyring
