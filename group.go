package nocopyring

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/timzifer/nocopy_ring/internal/core"
	"github.com/timzifer/nocopy_ring/internal/telemetry"
)

// Committer is the writer side of a ring as seen by a CommitGroup. Both *Ring
// and *Locked satisfy it.
type Committer interface {
	CanCommit(n int) error
	Commit(n int) error
}

var (
	_ Committer = (*Ring[byte])(nil)
	_ Committer = (*Locked[byte])(nil)
)

// GroupStats summarises the commits made through a CommitGroup.
type GroupStats = telemetry.GroupCommitSnapshot

// writerSide is implemented by Ring and Locked so that a ring and a Locked
// wrapping it are recognised as the same member.
type writerSide interface {
	writer() any
}

// CommitGroup commits the same number of elements on several rings, or on none
// of them. Typical use is one ring per audio channel where a frame becomes
// readable on every channel at once. Each ring may join a group only once.
type CommitGroup struct {
	mu           sync.Mutex
	members      map[any]struct{}
	orchestrator *core.CommitOrchestrator
}

// NewCommitGroup creates a group over members. logger may be nil. It fails
// with ErrNilMember or ErrDuplicateMember like Add.
func NewCommitGroup(logger *zap.Logger, members ...Committer) (*CommitGroup, error) {
	g := &CommitGroup{
		members:      make(map[any]struct{}, len(members)),
		orchestrator: core.NewCommitOrchestrator(logger),
	}
	for i, m := range members {
		if err := g.Add(m); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
	}
	return g, nil
}

// Add registers another member.
func (g *CommitGroup) Add(member Committer) error {
	if member == nil {
		return ErrNilMember
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key, ok := memberKey(member)
	if ok {
		if _, dup := g.members[key]; dup {
			return ErrDuplicateMember
		}
	}
	if err := g.orchestrator.RegisterBank(bank(member)); err != nil {
		return err
	}
	if ok {
		g.members[key] = struct{}{}
	}
	return nil
}

// Len returns the number of members.
func (g *CommitGroup) Len() int {
	return g.orchestrator.Len()
}

// Commit checks that every member can commit n elements and then commits them
// all. If any member would reject the commit, or ctx is done before the
// publish step, no member is changed.
func (g *CommitGroup) Commit(ctx context.Context, n int) error {
	return g.orchestrator.CommitAll(ctx, n)
}

// Version returns the number of successful group commits.
func (g *CommitGroup) Version() uint64 {
	return g.orchestrator.Version()
}

// Stats returns attempts, failures, published elements and the average
// duration of group commits.
func (g *CommitGroup) Stats() GroupStats {
	return g.orchestrator.Metrics().Snapshot()
}

// RegisterMetrics exposes Stats to Prometheus with the const label group=name.
func (g *CommitGroup) RegisterMetrics(reg prometheus.Registerer, name string) error {
	return g.orchestrator.Metrics().Register(reg, name)
}

// memberKey identifies the writer side behind member. Members of other types
// are keyed by themselves when comparable and are not checked otherwise.
func memberKey(member Committer) (any, bool) {
	if w, ok := member.(writerSide); ok {
		return w.writer(), true
	}
	if reflect.TypeOf(member).Comparable() {
		return member, true
	}
	return nil, false
}

func bank(member Committer) core.Bank {
	return core.BankFunc(func(ctx context.Context, n int) (func() error, func(), error) {
		if err := member.CanCommit(n); err != nil {
			return nil, nil, err
		}
		publish := func() error {
			return member.Commit(n)
		}
		return publish, nil, nil
	})
}
