package blocktree

import (
	"sync/atomic"

	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/internal/invariants"
	"github.com/Spreads/Spreads-sub007/internal/pool"
	"github.com/cockroachdb/errors"
)

// DefaultMaxNodeSize is the default child limit of an internal block.
const DefaultMaxNodeSize = 256

// DefaultInitialCapacity is the default capacity of a new block.
const DefaultInitialCapacity = 4

// Options configures a Tree.
type Options[K any] struct {
	// MaxLeafSize is the row limit of a leaf. Leaves grow by doubling, so the
	// effective limit is the largest power of two <= MaxLeafSize.
	MaxLeafSize int
	// MaxNodeSize is the child limit of an internal block, at least 2.
	MaxNodeSize int
	// InitialCapacity is the capacity of new blocks.
	InitialCapacity int
	// Compare orders keys. It is required.
	Compare func(a, b K) int
}

// EnsureDefaults fills unset fields with their defaults and returns o.
func (o *Options[K]) EnsureDefaults() *Options[K] {
	if o.MaxLeafSize <= 0 {
		o.MaxLeafSize = DefaultMaxLeafSize
	}
	if o.MaxNodeSize < 2 {
		o.MaxNodeSize = DefaultMaxNodeSize
	}
	if o.InitialCapacity <= 0 {
		o.InitialCapacity = DefaultInitialCapacity
	}

	return o
}

// Tree is an append-only ordered index of DataBlocks.
//
// Appends always go to the right-most leaf, cached on the root. When that
// leaf is full a sibling is created and its first key is added to the parent
// level, splitting parents the same way. When the root overflows its content
// moves into a new block and the root becomes the parent of that block and
// the new sibling, so the root keeps its identity.
//
// Append must not be called concurrently. Readers may run concurrently with
// the writer if they validate what they read, see series.Series.
type Tree[K, V any] struct {
	arena *Arena[K, V]
	opts  Options[K]
	root  *DataBlock[K, V]
	count atomic.Int64
	// released is checked on the writer side only.
	released invariants.CloseChecker
}

// New creates an empty tree whose root is a leaf.
//
// Returns:
//   - error: ErrInvalidOperation if opts.Compare is nil
func New[K, V any](arena *Arena[K, V], opts Options[K]) (*Tree[K, V], error) {
	if opts.Compare == nil {
		return nil, errors.Wrap(errs.ErrInvalidOperation, "block tree needs a key comparer")
	}
	opts.EnsureDefaults()

	t := &Tree[K, V]{arena: arena, opts: opts}
	t.root = t.newLeaf()
	t.root.Increment()
	t.root.last.Store(t.root)

	return t, nil
}

func (t *Tree[K, V]) newLeaf() *DataBlock[K, V] {
	b := CreateForSeries(t.arena, min(t.opts.InitialCapacity, t.opts.MaxLeafSize))
	b.maxRows = t.opts.MaxLeafSize

	return b
}

func (t *Tree[K, V]) newNode(height int) *DataBlock[K, V] {
	b := newNode(t.arena, height, min(t.opts.InitialCapacity, t.opts.MaxNodeSize))
	b.maxRows = t.opts.MaxNodeSize

	return b
}

// Root returns the root block. It is the same block for the life of the tree.
func (t *Tree[K, V]) Root() *DataBlock[K, V] {
	return t.root
}

// LastBlock returns the right-most leaf.
func (t *Tree[K, V]) LastBlock() *DataBlock[K, V] {
	return t.root.last.Load()
}

// FirstBlock returns the left-most leaf.
func (t *Tree[K, V]) FirstBlock() *DataBlock[K, V] {
	b := t.root
	for {
		r, n := b.snapshot()
		if r.height == 0 || n == 0 {
			return b
		}
		b = r.children[0]
	}
}

// Len returns the number of rows in the tree.
func (t *Tree[K, V]) Len() int {
	return int(t.count.Load())
}

// Height returns the height of the root.
func (t *Tree[K, V]) Height() int {
	return t.root.Height()
}

// Compare returns the key comparer of the tree.
func (t *Tree[K, V]) Compare() func(a, b K) int {
	return t.opts.Compare
}

// Append adds a row after the last one.
//
// Returns:
//   - error: ErrOutOfOrderKey if key is not greater than the last key
func (t *Tree[K, V]) Append(key K, value V) error {
	t.released.AssertNotClosed()
	leaf := t.LastBlock()
	if hi := leaf.Hi(); hi >= 0 && t.opts.Compare(key, leaf.Key(hi)) <= 0 {
		return errors.Wrapf(errs.ErrOutOfOrderKey, "key %v after %v", key, leaf.Key(hi))
	}

	if !leaf.TryAppendToBlock(key, value, true) {
		sibling := t.newLeaf()
		sibling.AppendToBlock(key, value)
		link(leaf, sibling)
		t.appendNode(key, sibling)
		t.root.last.Store(sibling)
	}
	t.count.Add(1)

	return nil
}

// appendNode adds child, whose first key is key, to the right-most block one
// level above it.
func (t *Tree[K, V]) appendNode(key K, child *DataBlock[K, V]) {
	height := child.Height() + 1
	if t.root.Height() < height {
		t.growRoot(key, child)
		return
	}

	parent := t.rightmost(height)
	if parent.tryAppendChild(key, child) {
		return
	}
	sibling := t.newNode(height)
	sibling.tryAppendChild(key, child)
	link(parent, sibling)
	t.appendNode(key, sibling)
}

// rightmost returns the right-most block at height.
func (t *Tree[K, V]) rightmost(height int) *DataBlock[K, V] {
	b := t.root
	for {
		r, n := b.snapshot()
		if r.height == height {
			return b
		}
		b = r.children[n-1]
	}
}

// growRoot moves the root's content into a new block and turns the root into
// the parent of that block and sibling, one level higher.
func (t *Tree[K, V]) growRoot(key K, sibling *DataBlock[K, V]) {
	root := t.root
	old, n := root.snapshot()

	moved := t.arena.allocate()
	moved.maxRows = root.maxRows
	moved.columnCount = root.columnCount
	moved.rows.Store(old)
	moved.hi.Store(int64(n - 1))
	link(moved, sibling)
	moved.Increment()
	sibling.Increment()

	capacity := pool.BucketSize(max(2, min(t.opts.InitialCapacity, t.opts.MaxNodeSize)))
	r := &rows[K, V]{
		height:   old.height + 1,
		keys:     t.arena.keys.Rent(capacity),
		children: t.arena.children.Rent(capacity),
	}
	r.keys[0], r.children[0] = old.keys[0], moved
	r.keys[1], r.children[1] = key, sibling

	root.hi.Store(-1)
	root.maxRows = t.opts.MaxNodeSize
	root.columnCount = 0
	root.next.Store(nil)
	root.rows.Store(r)
	root.hi.Store(1)
}

// tryAppendChild appends a child to an internal block, growing it up to its
// maximum size. The block holds a reference to child from then on.
func (b *DataBlock[K, V]) tryAppendChild(key K, child *DataBlock[K, V]) bool {
	if !b.ensureRoom(true) {
		return false
	}
	child.Increment()

	r := b.rows.Load()
	i := b.Hi() + 1
	r.keys[i] = key
	r.children[i] = child
	b.hi.Store(int64(i))

	return true
}

// Release drops the tree's reference to the root. Blocks are disposed once
// no cursor holds them. Releasing twice panics.
func (t *Tree[K, V]) Release() {
	t.released.Close()
	t.root.Decrement()
}
