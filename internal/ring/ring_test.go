package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evtscope/evtscope/pkg/types"
)

func ev(t uint64) types.Event {
	return types.Event{Kind: types.KindCD, T: t}
}

func TestNew_RejectsZeroCapacity(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrZeroCapacity)
	_, err = New(-1)
	assert.ErrorIs(t, err, ErrZeroCapacity)
}

func TestBuffer_PushBelowCapacity(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)

	b.Push(ev(1))
	b.Push(ev(2))

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 4, b.Cap())
	assert.Equal(t, []types.Event{ev(1), ev(2)}, b.Snapshot())
}

func TestBuffer_OverwritesOldestWhenFull(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)

	// Push capacity+k events: the k oldest are evicted.
	for i := uint64(1); i <= 5; i++ {
		b.Push(ev(i))
	}

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []types.Event{ev(3), ev(4), ev(5)}, b.Snapshot())
}

func TestBuffer_SnapshotPreservesOrderAcrossWrap(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)

	// Wrap the internal cursor several times over.
	for i := uint64(1); i <= 11; i++ {
		b.Push(ev(i))
	}

	snap := b.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, []types.Event{ev(8), ev(9), ev(10), ev(11)}, snap)
}

func TestBuffer_SnapshotIsACopy(t *testing.T) {
	b, err := New(2)
	require.NoError(t, err)
	b.Push(ev(1))

	snap := b.Snapshot()
	snap[0] = ev(99)

	assert.Equal(t, []types.Event{ev(1)}, b.Snapshot())
}

func TestBuffer_EmptySnapshot(t *testing.T) {
	b, err := New(8)
	require.NoError(t, err)
	assert.Empty(t, b.Snapshot())
	assert.Zero(t, b.Len())
}

func TestBuffer_ConcurrentPushAndSnapshot(t *testing.T) {
	b, err := New(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uint64(0); i < 10000; i++ {
			b.Push(ev(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := b.Snapshot()
			assert.LessOrEqual(t, len(snap), 64)
			// Within one snapshot, relative order must hold.
			for j := 1; j < len(snap); j++ {
				assert.Less(t, snap[j-1].T, snap[j].T)
			}
		}
	}()
	wg.Wait()
}
