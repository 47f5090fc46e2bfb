package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	nocopyring "github.com/timzifer/nocopy_ring"
)

// DefaultChunkSize caps how many bytes the producer reserves per read.
const DefaultChunkSize = 32 * 1024

var (
	// ErrInvalidChunkSize is returned by New for a chunk size below one.
	ErrInvalidChunkSize = errors.New("stream: chunk size must be positive")
	// ErrStrictCommitUnsupported is returned by New when the ring options
	// enable strict commit mode.
	ErrStrictCommitUnsupported = errors.New("stream: strict commit mode is not supported")
)

// Result reports how many bytes a Run moved.
type Result struct {
	BytesIn  int64
	BytesOut int64
}

// Option configures a Pump.
type Option func(*pumpOptions)

type pumpOptions struct {
	chunkSize int
	logger    *zap.Logger
	ringOpts  []nocopyring.Option
}

// WithChunkSize sets the largest reservation handed to a single Read.
func WithChunkSize(n int) Option {
	return func(o *pumpOptions) {
		o.chunkSize = n
	}
}

// WithLogger sets the pump logger. It is also passed to the ring.
func WithLogger(logger *zap.Logger) Option {
	return func(o *pumpOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRingOptions forwards options to the underlying ring. New rejects
// nocopyring.WithStrictCommit with ErrStrictCommitUnsupported because short
// reads commit part of a reservation.
func WithRingOptions(opts ...nocopyring.Option) Option {
	return func(o *pumpOptions) {
		o.ringOpts = append(o.ringOpts, opts...)
	}
}

// Pump copies a stream through a fixed-size byte ring. A Pump runs one copy
// at a time; Run may be called again once the previous call returned.
type Pump struct {
	ring      *nocopyring.Locked[byte]
	chunkSize int
	logger    *zap.Logger

	readable chan struct{}
	writable chan struct{}
}

// New creates a pump backed by a ring of capacity bytes.
func New(capacity int, opts ...Option) (*Pump, error) {
	o := pumpOptions{
		chunkSize: DefaultChunkSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, o.chunkSize)
	}

	ringOpts := append([]nocopyring.Option{nocopyring.WithLogger(o.logger)}, o.ringOpts...)
	ring, err := nocopyring.New[byte](capacity, ringOpts...)
	if err != nil {
		return nil, fmt.Errorf("stream: create ring: %w", err)
	}
	if ring.StrictCommit() {
		return nil, ErrStrictCommitUnsupported
	}

	return &Pump{
		ring:      nocopyring.NewLocked(ring),
		chunkSize: min(o.chunkSize, capacity),
		logger:    o.logger,
		readable:  make(chan struct{}, 1),
		writable:  make(chan struct{}, 1),
	}, nil
}

// Stats returns the counters of the underlying ring.
func (p *Pump) Stats() nocopyring.Stats {
	return p.ring.Stats()
}

// Run copies r to w until r returns io.EOF, either side fails, or ctx is done.
// A Read that is blocked when ctx ends is not interrupted; Run returns once it
// comes back.
func (p *Pump) Run(ctx context.Context, r io.Reader, w io.Writer) (Result, error) {
	p.ring.Reset()
	drain(p.readable)
	drain(p.writable)

	var (
		in, out atomic.Int64
		eof     atomic.Bool
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.produce(gctx, r, &in, &eof)
	})
	g.Go(func() error {
		return p.consume(gctx, w, &out, &eof)
	})
	err := g.Wait()

	res := Result{BytesIn: in.Load(), BytesOut: out.Load()}
	fields := []zap.Field{
		zap.Int64("bytes_in", res.BytesIn),
		zap.Int64("bytes_out", res.BytesOut),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		p.logger.Warn("pump stopped", append(fields, zap.Error(err))...)
		return res, err
	}
	p.logger.Info("pump finished", fields...)
	return res, nil
}

func (p *Pump) produce(ctx context.Context, r io.Reader, in *atomic.Int64, eof *atomic.Bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, err := p.ring.ReserveUpTo(p.chunkSize)
		if err != nil {
			return err
		}
		if v.Len() == 0 {
			if err := wait(ctx, p.writable); err != nil {
				return err
			}
			continue
		}

		n, rerr := fill(r, v)
		if n > 0 {
			if err := p.ring.Commit(n); err != nil {
				return err
			}
			in.Add(int64(n))
			signal(p.readable)
		}
		if rest := v.Len() - n; rest > 0 {
			if err := p.ring.Unreserve(rest); err != nil {
				return err
			}
		}

		switch {
		case errors.Is(rerr, io.EOF):
			eof.Store(true)
			signal(p.readable)
			return nil
		case rerr != nil:
			return fmt.Errorf("stream: read: %w", rerr)
		}
	}
}

func (p *Pump) consume(ctx context.Context, w io.Writer, out *atomic.Int64, eof *atomic.Bool) error {
	for {
		v, err := p.ring.PeekAll()
		if err != nil {
			return err
		}
		if v.Len() == 0 {
			if eof.Load() && p.ring.Readable() == 0 {
				return nil
			}
			if err := wait(ctx, p.readable); err != nil {
				return err
			}
			continue
		}

		n, werr := flush(w, v)
		if n > 0 {
			if err := p.ring.ConsumeRead(n); err != nil {
				return err
			}
			out.Add(int64(n))
			signal(p.writable)
		}
		if werr != nil {
			return fmt.Errorf("stream: write: %w", werr)
		}
	}
}

// fill reads into the first segment and, only if that filled up, into the
// second.
func fill(r io.Reader, v nocopyring.View[byte]) (int, error) {
	first, second := v.Segments()
	n, err := r.Read(first)
	if err != nil || n < len(first) || len(second) == 0 {
		return n, err
	}
	m, err := r.Read(second)
	return n + m, err
}

func flush(w io.Writer, v nocopyring.View[byte]) (int, error) {
	first, second := v.Segments()
	n, err := w.Write(first)
	if err != nil || len(second) == 0 {
		return n, err
	}
	m, err := w.Write(second)
	return n + m, err
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func wait(ctx context.Context, ch chan struct{}) error {
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func drain(ch chan struct{}) {
	select {
	case <-ch:
	default:
	}
}
