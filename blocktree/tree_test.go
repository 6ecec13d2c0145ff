package blocktree

import (
	"cmp"
	"testing"

	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/internal/invariants"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, opts Options[int]) (*Tree[int, string], *Arena[int, string]) {
	t.Helper()
	opts.Compare = cmp.Compare[int]
	arena := NewArena[int, string]()
	tree, err := New(arena, opts)
	require.NoError(t, err)

	return tree, arena
}

func TestNew_RequiresCompare(t *testing.T) {
	_, err := New(NewArena[int, int](), Options[int]{})
	require.ErrorIs(t, err, errs.ErrInvalidOperation)
}

func TestOptions_EnsureDefaults(t *testing.T) {
	opts := (&Options[int]{MaxNodeSize: 1}).EnsureDefaults()
	require.Equal(t, DefaultMaxLeafSize, opts.MaxLeafSize)
	require.Equal(t, DefaultMaxNodeSize, opts.MaxNodeSize)
	require.Equal(t, DefaultInitialCapacity, opts.InitialCapacity)
}

func TestTree_Append(t *testing.T) {
	tree, _ := newTree(t, Options[int]{})
	require.Zero(t, tree.Len())
	require.True(t, tree.Root().IsLeaf())
	require.Same(t, tree.Root(), tree.LastBlock())

	require.NoError(t, tree.Append(1, "a"))
	require.NoError(t, tree.Append(2, "b"))
	require.Equal(t, 2, tree.Len())

	err := tree.Append(2, "dup")
	require.ErrorIs(t, err, errs.ErrOutOfOrderKey)
	err = tree.Append(0, "early")
	require.ErrorIs(t, err, errs.ErrOutOfOrderKey)
	require.Equal(t, 2, tree.Len())
}

func TestTree_LookupKey(t *testing.T) {
	tree, _ := newTree(t, Options[int]{MaxLeafSize: 2, MaxNodeSize: 2, InitialCapacity: 2})
	for _, k := range []int{1, 3, 5, 7, 9} {
		require.NoError(t, tree.Append(k, "v"))
	}
	require.Greater(t, tree.Height(), 1)

	cases := []struct {
		key  int
		dir  Lookup
		want int // -1: not found
	}{
		{4, LE, 3},
		{4, LT, 3},
		{4, GE, 5},
		{4, GT, 5},
		{4, EQ, -1},
		{5, EQ, 5},
		{5, LE, 5},
		{5, LT, 3},
		{5, GE, 5},
		{5, GT, 7},
		{1, LT, -1},
		{1, LE, 1},
		{0, LE, -1},
		{0, GE, 1},
		{9, GT, -1},
		{9, GE, 9},
		{10, LE, 9},
		{10, GE, -1},
	}
	for _, tc := range cases {
		t.Run(tc.dir.String(), func(t *testing.T) {
			leaf, i := tree.LookupKey(tc.key, tc.dir)
			if tc.want < 0 {
				require.Nil(t, leaf, "key %d", tc.key)
				require.Equal(t, -1, i)
				return
			}
			require.NotNil(t, leaf, "key %d", tc.key)
			require.Equal(t, tc.want, leaf.Key(i), "key %d", tc.key)
		})
	}
}

func TestTree_LookupKey_Empty(t *testing.T) {
	tree, _ := newTree(t, Options[int]{})
	for _, dir := range []Lookup{LT, LE, EQ, GE, GT} {
		leaf, i := tree.LookupKey(1, dir)
		require.Nil(t, leaf)
		require.Equal(t, -1, i)
	}
}

func TestTree_ManyRows(t *testing.T) {
	const n = 10_000
	tree, _ := newTree(t, Options[int]{MaxLeafSize: 8, MaxNodeSize: 4})
	root := tree.Root()
	handle := root.Handle()

	for i := range n {
		require.NoError(t, tree.Append(2*i, "v"))
	}
	require.Equal(t, n, tree.Len())
	require.Same(t, root, tree.Root())
	require.Equal(t, handle, tree.Root().Handle())
	require.GreaterOrEqual(t, tree.Height(), 6)

	for i := range n {
		k := 2 * i
		leaf, j := tree.LookupKey(k, EQ)
		require.NotNil(t, leaf)
		require.Equal(t, k, leaf.Key(j))

		leaf, j = tree.LookupKey(k+1, LT)
		require.Equal(t, k, leaf.Key(j))

		leaf, j = tree.LookupKey(k-1, GT)
		require.Equal(t, k, leaf.Key(j))
	}

	// Leaves form a doubly linked list in key order.
	want := 0
	var last *DataBlock[int, string]
	for leaf := tree.FirstBlock(); leaf != nil; leaf = leaf.Next() {
		require.True(t, leaf.IsLeaf())
		for j := leaf.Lo(); j <= leaf.Hi(); j++ {
			require.Equal(t, want, leaf.Key(j))
			want += 2
		}
		last = leaf
	}
	require.Equal(t, 2*n, want)
	require.Same(t, tree.LastBlock(), last)

	count := 0
	for leaf := tree.LastBlock(); leaf != nil; leaf = leaf.Previous() {
		count += leaf.RowCount()
	}
	require.Equal(t, n, count)
}

func TestTree_Release(t *testing.T) {
	tree, arena := newTree(t, Options[int]{MaxLeafSize: 4, MaxNodeSize: 4})
	for i := range 100 {
		require.NoError(t, tree.Append(i, "v"))
	}
	require.Greater(t, arena.Live(), 1)

	// A reader holding a leaf keeps it alive past the tree.
	leaf, _ := tree.LookupKey(50, EQ)
	leaf.Increment()
	h := leaf.Handle()

	tree.Release()
	require.Equal(t, 1, arena.Live())
	require.False(t, leaf.IsDisposed())
	require.Equal(t, 50, leaf.Key(2))
	require.Nil(t, leaf.Next())
	require.Nil(t, leaf.Previous())

	leaf.Decrement()
	require.Zero(t, arena.Live())
	_, ok := arena.Lookup(h)
	require.False(t, ok)
}

func TestTree_ReleaseTwice(t *testing.T) {
	tree, arena := newTree(t, Options[int]{})
	require.NoError(t, tree.Append(1, "a"))

	tree.Release()
	require.Zero(t, arena.Live())
	require.Panics(t, tree.Release)

	if invariants.Enabled {
		require.Panics(t, func() { _ = tree.Append(2, "b") })
	}
}
