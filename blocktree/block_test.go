package blocktree

import (
	"testing"

	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/stretchr/testify/require"
)

func TestCreateForSeries(t *testing.T) {
	arena := NewArena[int64, int64]()
	b := CreateForSeries(arena, 3)

	require.Equal(t, 4, b.RowCapacity())
	require.Equal(t, 0, b.Lo())
	require.Equal(t, -1, b.Hi())
	require.Zero(t, b.RowCount())
	require.Zero(t, b.RefCount())
	require.True(t, b.IsLeaf())
	require.False(t, b.Handle().IsZero())
	require.Equal(t, 1, arena.Live())
}

func TestTryAppendToBlock_Growth(t *testing.T) {
	arena := NewArena[int64, int64]()
	b := CreateForSeries(arena, 4)
	require.Equal(t, 4, b.RowCapacity())

	for i := range int64(5) {
		require.True(t, b.TryAppendToBlock(i, i, true))
	}

	require.Equal(t, 8, b.RowCapacity())
	require.Equal(t, 5, b.RowCount())
	for i := range 5 {
		require.Equal(t, int64(i), b.Key(i))
		require.Equal(t, int64(i), b.Value(i))
	}

	k, v, ok := b.Row(4)
	require.True(t, ok)
	require.Equal(t, int64(4), k)
	require.Equal(t, int64(4), v)
	_, _, ok = b.Row(5)
	require.False(t, ok)
	_, _, ok = b.Row(-1)
	require.False(t, ok)
}

func TestTryAppendToBlock_WithoutGrowth(t *testing.T) {
	arena := NewArena[int64, string]()
	b := CreateForSeries(arena, 2)

	require.True(t, b.TryAppendToBlock(1, "a", false))
	require.True(t, b.TryAppendToBlock(2, "b", false))
	require.False(t, b.TryAppendToBlock(3, "c", false))
	require.Equal(t, 2, b.RowCount())
	require.Equal(t, 2, b.RowCapacity())

	b.maxRows = 2
	require.False(t, b.TryAppendToBlock(3, "c", true))
	require.Equal(t, 2, b.RowCount())
}

func TestAppendToBlock_FullPanics(t *testing.T) {
	arena := NewArena[int64, int64]()
	b := CreateForSeries(arena, 1)
	b.AppendToBlock(1, 1)

	require.Panics(t, func() { b.AppendToBlock(2, 2) })
	require.Equal(t, 1, b.RowCount())
}

func TestIncreaseRowsCapacity(t *testing.T) {
	arena := NewArena[int64, int64]()
	b := CreateForSeries(arena, 4)
	for i := range int64(3) {
		b.AppendToBlock(i, i*10)
	}

	require.Equal(t, 16, b.IncreaseRowsCapacity(10))
	require.Equal(t, 16, b.RowCapacity())
	require.Equal(t, 3, b.RowCount())

	// Smaller requests still grow by at least one row.
	require.Equal(t, 32, b.IncreaseRowsCapacity(1))

	b.maxRows = 32
	require.Equal(t, -1, b.IncreaseRowsCapacity(33))
	require.Equal(t, 32, b.RowCapacity())
	for i := range 3 {
		require.Equal(t, int64(i*10), b.Value(i))
	}
}

func TestRefCountLifecycle(t *testing.T) {
	arena := NewArena[int64, int64]()
	b := CreateForSeries(arena, 4)
	h := b.Handle()

	for i := 1; i <= 3; i++ {
		require.Equal(t, i, b.Increment())
	}
	require.Equal(t, 2, b.Decrement())
	require.Equal(t, 1, b.Decrement())
	require.False(t, b.IsDisposed())
	_, ok := arena.Lookup(h)
	require.True(t, ok)

	require.Equal(t, 0, b.Decrement())
	require.True(t, b.IsDisposed())
	require.Zero(t, arena.Live())
	_, ok = arena.Lookup(h)
	require.False(t, ok)

	require.Panics(t, func() { b.Decrement() })
}

func TestArena_WeakHandles(t *testing.T) {
	arena := NewArena[int64, int64]()
	b := CreateForSeries(arena, 4)
	b.Increment()
	h := b.Handle()

	got, ok := arena.Acquire(h)
	require.True(t, ok)
	require.Same(t, b, got)
	require.Equal(t, 2, b.RefCount())

	b.Decrement()
	b.Decrement()
	_, ok = arena.Acquire(h)
	require.False(t, ok)

	// The slot is reused under a new generation.
	c := CreateForSeries(arena, 4)
	require.NotEqual(t, h, c.Handle())
	_, ok = arena.Lookup(h)
	require.False(t, ok)
	got, ok = arena.Lookup(c.Handle())
	require.True(t, ok)
	require.Same(t, c, got)

	// A block nobody references cannot be acquired.
	_, ok = arena.Acquire(c.Handle())
	require.False(t, ok)

	_, ok = arena.Lookup(Handle{})
	require.False(t, ok)
}

func TestPanel(t *testing.T) {
	arena := NewArena[int64, float64]()
	b := CreateForPanel(arena, 2, 3)
	require.Equal(t, 3, b.ColumnCount())
	require.Equal(t, 2, b.RowCapacity())

	for i := range int64(5) {
		f := float64(i)
		require.NoError(t, b.AppendRow(i, []float64{f, f * 10, f * 100}))
	}
	require.Equal(t, 5, b.RowCount())
	require.Equal(t, 8, b.RowCapacity())

	for i := range 5 {
		f := float64(i)
		require.Equal(t, int64(i), b.Key(i))
		require.Equal(t, f*10, b.PanelValue(i, 1))
		require.Equal(t, []float64{f, f * 10, f * 100}, b.RowValues(i, nil))
	}

	err := b.AppendRow(5, []float64{1})
	require.ErrorIs(t, err, errs.ErrInvalidOperation)

	b.maxRows = 8
	for i := int64(5); i < 8; i++ {
		require.NoError(t, b.AppendRow(i, []float64{0, 0, 0}))
	}
	err = b.AppendRow(8, []float64{0, 0, 0})
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)
	require.Equal(t, 8, b.RowCount())

	series := CreateForSeries(arena, 2)
	err = series.AppendRow(1, []float64{1})
	require.ErrorIs(t, err, errs.ErrInvalidOperation)
}

func TestPanel_Dispose(t *testing.T) {
	arena := NewArena[int64, float64]()
	b := CreateForPanel(arena, 4, 2)
	require.NoError(t, b.AppendRow(1, []float64{1, 2}))
	b.Increment()
	b.Decrement()

	require.True(t, b.IsDisposed())
	require.Zero(t, arena.Live())
}
