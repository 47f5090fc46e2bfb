package nocopyring

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockedConcurrentWriterAndReader(t *testing.T) {
	const total = 20000

	l := NewLocked(MustNew[int](37))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		next := 0
		for next < total {
			v, err := l.ReserveUpTo(min(11, total-next))
			if err != nil {
				t.Errorf("reserve failed: %v", err)
				return
			}
			if v.Len() == 0 {
				runtime.Gosched()
				continue
			}
			// fill outside the lock
			for i := 0; i < v.Len(); i++ {
				v.Set(i, next)
				next++
			}
			if err := l.Commit(v.Len()); err != nil {
				t.Errorf("commit failed: %v", err)
				return
			}
		}
	}()

	var mismatch error
	go func() {
		defer wg.Done()
		expect := 0
		for expect < total {
			v, err := l.PeekAll()
			if err != nil {
				t.Errorf("peek failed: %v", err)
				return
			}
			if v.Len() == 0 {
				runtime.Gosched()
				continue
			}
			first, second := v.Segments()
			for _, seg := range [][]int{first, second} {
				for _, got := range seg {
					if got != expect && mismatch == nil {
						mismatch = fmt.Errorf("expected %d, got %d", expect, got)
					}
					expect++
				}
			}
			if err := l.ConsumeRead(v.Len()); err != nil {
				t.Errorf("consume failed: %v", err)
				return
			}
		}
	}()

	wg.Wait()
	require.NoError(t, mismatch)
	require.Equal(t, 0, l.Readable())
	require.Equal(t, 37, l.Reservable())

	stats := l.Stats()
	require.Equal(t, uint64(total), stats.CommittedElements)
	require.Equal(t, uint64(total), stats.ConsumedElements)
}

func TestLockedCopyHelpersAndReset(t *testing.T) {
	l := NewLocked(MustNew[byte](8))

	require.NoError(t, l.Write([]byte("ring")))
	require.Equal(t, 4, l.Readable())
	require.Equal(t, 8, l.Capacity())

	_, err := l.Reserve(2)
	require.NoError(t, err)
	require.Equal(t, 2, l.Committable())
	require.NoError(t, l.CanCommit(2))
	require.NoError(t, l.Unreserve(2))

	dst := make([]byte, 4)
	require.NoError(t, l.Read(dst))
	require.Equal(t, "ring", string(dst))

	_, err = l.PeekRead(1)
	require.ErrorIs(t, err, ErrInsufficientReadableSpace)

	l.Reset()
	require.Equal(t, 8, l.Reservable())
}
