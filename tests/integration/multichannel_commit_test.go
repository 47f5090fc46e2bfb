package integration

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	nocopyring "github.com/timzifer/nocopy_ring"
)

const (
	channels  = 4
	frameLen  = 48
	frames    = 2000
	ringFrame = 5
)

func sample(channel, frame, i int) int32 {
	return int32(channel<<24 | frame<<8 | i&0xff)
}

func newChannels(t *testing.T) []*nocopyring.Locked[int32] {
	t.Helper()
	rings := make([]*nocopyring.Locked[int32], channels)
	for ch := range rings {
		// capacity is not a multiple of frameLen so frames wrap
		r, err := nocopyring.New[int32](ringFrame*frameLen + 7)
		require.NoError(t, err)
		rings[ch] = nocopyring.NewLocked(r)
	}
	return rings
}

// Frames committed through a CommitGroup become readable on every channel
// together. Members publish in registration order, so once the last channel
// shows a frame all earlier channels must show it too.
func TestMultiChannelFramesCommitTogether(t *testing.T) {
	rings := newChannels(t)
	members := make([]nocopyring.Committer, len(rings))
	for i, r := range rings {
		members[i] = r
	}
	group, err := nocopyring.NewCommitGroup(zaptest.NewLogger(t), members...)
	require.NoError(t, err)
	require.Equal(t, channels, group.Len())

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)

	go func() {
		defer wg.Done()
		for f := 0; f < frames; f++ {
			for ch, r := range rings {
				var (
					v   nocopyring.View[int32]
					err error
				)
				for {
					v, err = r.Reserve(frameLen)
					if !errors.Is(err, nocopyring.ErrInsufficientReservableSpace) {
						break
					}
					runtime.Gosched()
				}
				if err != nil {
					errs <- fmt.Errorf("channel %d frame %d: reserve: %w", ch, f, err)
					return
				}
				for i := 0; i < frameLen; i++ {
					v.Set(i, sample(ch, f, i))
				}
			}
			if err := group.Commit(ctx, frameLen); err != nil {
				errs <- fmt.Errorf("frame %d: group commit: %w", f, err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		buf := make([]int32, frameLen)
		last := rings[channels-1]
		for f := 0; f < frames; {
			if last.Readable() < frameLen {
				runtime.Gosched()
				continue
			}
			for ch, r := range rings {
				v, err := r.PeekRead(frameLen)
				if err != nil {
					errs <- fmt.Errorf("channel %d frame %d: torn frame: %w", ch, f, err)
					return
				}
				if _, err := v.CopyTo(buf); err != nil {
					errs <- err
					return
				}
				for i, got := range buf {
					if want := sample(ch, f, i); got != want {
						errs <- fmt.Errorf("channel %d frame %d sample %d: got %#x want %#x", ch, f, i, got, want)
						return
					}
				}
				if err := r.ConsumeRead(frameLen); err != nil {
					errs <- err
					return
				}
			}
			f++
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, uint64(frames), group.Version())
	for _, r := range rings {
		require.Equal(t, 0, r.Readable())
		require.Equal(t, r.Capacity(), r.Reservable())
	}
}

func TestMultiChannelCommitIsAllOrNothing(t *testing.T) {
	rings := newChannels(t)
	group, err := nocopyring.NewCommitGroup(nil)
	require.NoError(t, err)
	for _, r := range rings {
		require.NoError(t, group.Add(r))
	}

	for ch, r := range rings {
		n := frameLen
		if ch == 2 {
			n = frameLen / 2
		}
		_, err := r.Reserve(n)
		require.NoError(t, err)
	}

	err = group.Commit(context.Background(), frameLen)
	require.ErrorIs(t, err, nocopyring.ErrInsufficientCommittableSpace)
	require.Zero(t, group.Version())
	for _, r := range rings {
		require.Zero(t, r.Readable())
	}

	require.NoError(t, group.Commit(context.Background(), frameLen/2))
	for _, r := range rings {
		require.Equal(t, frameLen/2, r.Readable())
	}
}

func TestMultiChannelCommitHonoursCancellation(t *testing.T) {
	rings := newChannels(t)
	group, err := nocopyring.NewCommitGroup(nil, rings[0], rings[1])
	require.NoError(t, err)
	for _, r := range rings[:2] {
		_, err = r.Reserve(frameLen)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, group.Commit(ctx, frameLen), context.Canceled)
	require.Zero(t, rings[0].Readable())
	require.Zero(t, rings[1].Readable())
}
