// Package stream moves bytes from an io.Reader to an io.Writer through a
// nocopyring ring without an intermediate copy: the producer reads straight
// into reserved views and the consumer writes straight from peeked views.
//
// The producer and consumer run on their own goroutines and coordinate through
// a Locked ring plus two edge-coalesced readiness channels, so a full ring
// parks the producer and an empty ring parks the consumer until the other side
// makes progress or the context ends.
package stream
