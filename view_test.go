package nocopyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroViewIsInvalid(t *testing.T) {
	var v View[int]
	assert.False(t, v.Valid())
	assert.ErrorIs(t, v.Err(), ErrStaleView)
	assert.Equal(t, 0, v.Len())
	assert.Panics(t, func() { v.Segments() })
}

func TestWriterViewInvalidatedByWriterCalls(t *testing.T) {
	calls := map[string]func(r *Ring[int]){
		"reserve":   func(r *Ring[int]) { _, _ = r.Reserve(1) },
		"commit":    func(r *Ring[int]) { _ = r.Commit(1) },
		"unreserve": func(r *Ring[int]) { _ = r.Unreserve(1) },
		"reset":     func(r *Ring[int]) { r.Reset() },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			r := MustNew[int](8)
			v, err := r.Reserve(2)
			require.NoError(t, err)
			require.True(t, v.Valid())

			call(r)

			assert.False(t, v.Valid())
			_, err = v.CopyFrom([]int{1})
			assert.ErrorIs(t, err, ErrStaleView)
			assert.Panics(t, func() { v.Set(0, 1) })
		})
	}
}

func TestReaderViewInvalidatedByReaderCalls(t *testing.T) {
	r := MustNew[int](8)
	require.NoError(t, r.Write([]int{1, 2, 3}))

	v, err := r.PeekRead(2)
	require.NoError(t, err)

	// a second peek does not mutate and keeps earlier views alive
	_, err = r.PeekRead(1)
	require.NoError(t, err)
	assert.True(t, v.Valid())

	require.NoError(t, r.ConsumeRead(1))
	assert.False(t, v.Valid())
	_, err = v.CopyTo(make([]int, 2))
	assert.ErrorIs(t, err, ErrStaleView)
}

func TestViewsSurviveCallsFromTheOtherSide(t *testing.T) {
	r := MustNew[int](8)
	require.NoError(t, r.Write([]int{1, 2}))

	readView, err := r.PeekRead(2)
	require.NoError(t, err)
	writeView, err := r.Reserve(3)
	require.NoError(t, err)

	assert.True(t, readView.Valid(), "reserve must not invalidate reader view")

	require.NoError(t, r.ConsumeRead(2))
	assert.True(t, writeView.Valid(), "consume must not invalidate writer view")

	n, err := writeView.CopyFrom([]int{7, 8, 9, 10})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestViewCopyToShortDestination(t *testing.T) {
	r := MustNew[int](4)
	_, _ = r.Reserve(3)
	_ = r.Commit(3)
	_ = r.ConsumeRead(3)
	require.NoError(t, r.Write([]int{1, 2, 3}))

	v, err := r.PeekRead(3)
	require.NoError(t, err)
	require.True(t, v.IsSplit())

	dst := make([]int, 2)
	n, err := v.CopyTo(dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, dst)
}
