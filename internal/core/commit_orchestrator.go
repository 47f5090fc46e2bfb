package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/timzifer/nocopy_ring/internal/telemetry"
)

// ErrNilBank is returned when registering a nil bank.
var ErrNilBank = errors.New("core: nil bank")

// Bank is one participant of a group commit.
//
// PrepareCommit checks that n elements can be committed and returns publish
// and abort callbacks. A prepared bank is expected to publish without error;
// if publish fails anyway the group commit is reported as failed.
type Bank interface {
	PrepareCommit(ctx context.Context, n int) (publish func() error, abort func(), err error)
}

// BankFunc adapts a function to the Bank interface.
type BankFunc func(ctx context.Context, n int) (func() error, func(), error)

func (f BankFunc) PrepareCommit(ctx context.Context, n int) (func() error, func(), error) {
	return f(ctx, n)
}

// CommitOrchestrator serialises group commits over all registered banks.
type CommitOrchestrator struct {
	mu      sync.Mutex
	banks   []Bank
	version atomic.Uint64
	metrics telemetry.GroupCommitMetrics
	logger  *zap.Logger
}

// NewCommitOrchestrator creates an orchestrator over banks. A nil logger is
// replaced by a no-op logger.
func NewCommitOrchestrator(logger *zap.Logger, banks ...Bank) *CommitOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitOrchestrator{
		banks:  append([]Bank(nil), banks...),
		logger: logger,
	}
}

// CommitAll commits n elements on every bank inside one critical section.
func (o *CommitOrchestrator) CommitAll(ctx context.Context, n int) (err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	finish := o.metrics.Begin(len(o.banks), n)
	defer func() { finish(err) }()

	if len(o.banks) == 0 {
		return nil
	}

	publishes := make([]func() error, 0, len(o.banks))
	aborts := make([]func(), 0, len(o.banks))

	for i, bank := range o.banks {
		if err = ctx.Err(); err != nil {
			break
		}
		var (
			publish func() error
			abort   func()
		)
		publish, abort, err = bank.PrepareCommit(ctx, n)
		if err != nil {
			err = fmt.Errorf("bank %d: %w", i, err)
			break
		}
		if publish == nil {
			publish = func() error { return nil }
		}
		if abort == nil {
			abort = func() {}
		}
		publishes = append(publishes, publish)
		aborts = append(aborts, abort)
	}

	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		for i := len(aborts) - 1; i >= 0; i-- {
			aborts[i]()
		}
		if ce := o.logger.Check(zapcore.DebugLevel, "group commit aborted"); ce != nil {
			ce.Write(zap.Int("banks", len(o.banks)), zap.Int("prepared", len(aborts)), zap.Int("n", n), zap.Error(err))
		}
		return err
	}

	for i, publish := range publishes {
		if perr := publish(); perr != nil {
			err = multierr.Append(err, fmt.Errorf("bank %d: publish: %w", i, perr))
		}
	}
	if err != nil {
		o.logger.Error("group commit partially published", zap.Int("banks", len(o.banks)), zap.Int("n", n), zap.Error(err))
		return err
	}

	o.version.Add(1)
	return nil
}

// Version returns the number of group commits published on every bank.
func (o *CommitOrchestrator) Version() uint64 {
	return o.version.Load()
}

// Metrics returns the counters of this orchestrator.
func (o *CommitOrchestrator) Metrics() *telemetry.GroupCommitMetrics {
	return &o.metrics
}

// Len returns the number of registered banks.
func (o *CommitOrchestrator) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.banks)
}

// RegisterBank appends another bank. It waits for a running CommitAll.
func (o *CommitOrchestrator) RegisterBank(bank Bank) error {
	if bank == nil {
		return ErrNilBank
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.banks = append(o.banks, bank)
	return nil
}
