package blocktree

import (
	"sync/atomic"

	"github.com/Spreads/Spreads-sub007/internal/invariants"
	"github.com/Spreads/Spreads-sub007/internal/pool"
	"github.com/cockroachdb/errors"
)

// DefaultMaxLeafSize is the default row limit of a leaf block.
const DefaultMaxLeafSize = 4096

// rows is the storage of a block. It is replaced as a whole when the block
// grows or the root changes height, so readers always see vectors that match
// the block's height.
type rows[K, V any] struct {
	height   int
	keys     []K
	values   []V                // series leaves
	columns  [][]V              // panel leaves
	children []*DataBlock[K, V] // internal nodes
}

func (r *rows[K, V]) capacity() int {
	return len(r.keys)
}

// DataBlock is one node of a block tree. Leaves hold row keys and values;
// internal nodes hold the first key of each child and the child itself.
//
// Rows are appended at Hi+1 by a single writer. Readers may run concurrently
// with it and see every row up to the Hi they loaded.
//
// A block is reference counted. It is disposed, and its slot returned to the
// arena, when the count drops from one to zero.
type DataBlock[K, V any] struct {
	arena  *Arena[K, V]
	handle Handle

	refs     atomic.Int32
	disposed atomic.Bool

	maxRows     int
	columnCount int

	rows atomic.Pointer[rows[K, V]]
	hi   atomic.Int64
	next atomic.Pointer[DataBlock[K, V]]
	prev atomic.Pointer[DataBlock[K, V]]
	// last caches the right-most leaf. It is only set on a tree root.
	last atomic.Pointer[DataBlock[K, V]]
}

func (b *DataBlock[K, V]) reset(a *Arena[K, V], h Handle) {
	b.arena = a
	b.handle = h
	b.refs.Store(0)
	b.disposed.Store(false)
	b.maxRows = DefaultMaxLeafSize
	b.columnCount = 0
	b.rows.Store(nil)
	b.hi.Store(-1)
	b.next.Store(nil)
	b.prev.Store(nil)
	b.last.Store(nil)
}

// CreateForSeries allocates a leaf with room for rowCapacity key/value rows,
// rounded up to a power of two. The block is empty (Lo 0, Hi -1) and has a
// reference count of zero.
func CreateForSeries[K, V any](arena *Arena[K, V], rowCapacity int) *DataBlock[K, V] {
	b := arena.allocate()
	capacity := pool.BucketSize(rowCapacity)
	b.rows.Store(&rows[K, V]{
		keys:   arena.keys.Rent(capacity),
		values: arena.values.Rent(capacity),
	})

	return b
}

// newNode allocates an empty internal block.
func newNode[K, V any](arena *Arena[K, V], height, rowCapacity int) *DataBlock[K, V] {
	b := arena.allocate()
	capacity := pool.BucketSize(rowCapacity)
	b.rows.Store(&rows[K, V]{
		height:   height,
		keys:     arena.keys.Rent(capacity),
		children: arena.children.Rent(capacity),
	})

	return b
}

// Handle returns the arena handle of the block.
func (b *DataBlock[K, V]) Handle() Handle {
	return b.handle
}

// Height returns 0 for leaves and the distance to the leaves otherwise.
func (b *DataBlock[K, V]) Height() int {
	return b.rows.Load().height
}

// IsLeaf reports whether the block holds rows rather than children.
func (b *DataBlock[K, V]) IsLeaf() bool {
	return b.Height() == 0
}

// Lo returns the index of the first row.
func (b *DataBlock[K, V]) Lo() int {
	return 0
}

// Hi returns the index of the last row, -1 if the block is empty.
func (b *DataBlock[K, V]) Hi() int {
	return int(b.hi.Load())
}

// RowCount returns the number of rows.
func (b *DataBlock[K, V]) RowCount() int {
	return b.Hi() + 1
}

// RowCapacity returns the number of rows the block can hold without growing.
func (b *DataBlock[K, V]) RowCapacity() int {
	return b.rows.Load().capacity()
}

// MaxRowCapacity returns the capacity the block may grow to.
func (b *DataBlock[K, V]) MaxRowCapacity() int {
	return b.maxRows
}

// snapshot returns the storage and the number of readable rows. Hi is loaded
// first: storage stored before a row became visible already contains it.
func (b *DataBlock[K, V]) snapshot() (*rows[K, V], int) {
	n := int(b.hi.Load()) + 1
	r := b.rows.Load()

	return r, min(n, r.capacity())
}

// Key returns the key of row i.
func (b *DataBlock[K, V]) Key(i int) K {
	return b.rows.Load().keys[i]
}

// Value returns the value of row i of a series leaf.
func (b *DataBlock[K, V]) Value(i int) V {
	return b.rows.Load().values[i]
}

// Child returns the child block of row i of an internal node.
func (b *DataBlock[K, V]) Child(i int) *DataBlock[K, V] {
	return b.rows.Load().children[i]
}

// Row returns key and value of row i read from a single storage snapshot.
// It reports false if the block is not a series leaf or i is past the last
// visible row, which a reader racing a root split can observe.
func (b *DataBlock[K, V]) Row(i int) (key K, value V, ok bool) {
	r, n := b.snapshot()
	if r.height != 0 || r.values == nil || i < 0 || i >= n {
		return key, value, false
	}

	return r.keys[i], r.values[i], true
}

// Next returns the right neighbor on the same level, or nil.
func (b *DataBlock[K, V]) Next() *DataBlock[K, V] {
	return b.next.Load()
}

// Previous returns the left neighbor on the same level, or nil.
func (b *DataBlock[K, V]) Previous() *DataBlock[K, V] {
	return b.prev.Load()
}

// AppendToBlock writes a row at Hi+1. The block must be a series leaf with
// spare capacity; appending into a full block panics.
func (b *DataBlock[K, V]) AppendToBlock(key K, value V) {
	r := b.rows.Load()
	invariants.Check(r.values != nil, "AppendToBlock on a block without a value vector")
	i := b.Hi() + 1
	if i >= r.capacity() {
		panic(errors.AssertionFailedf("append into a full block: %d rows, capacity %d", i, r.capacity()))
	}
	r.keys[i] = key
	r.values[i] = value
	b.hi.Store(int64(i))
}

// TryAppendToBlock appends a row, growing the block first if it is full and
// increaseCapacity is set. It returns false if the row does not fit.
func (b *DataBlock[K, V]) TryAppendToBlock(key K, value V, increaseCapacity bool) bool {
	if !b.ensureRoom(increaseCapacity) {
		return false
	}
	b.AppendToBlock(key, value)

	return true
}

func (b *DataBlock[K, V]) ensureRoom(increaseCapacity bool) bool {
	capacity := b.RowCapacity()
	if b.RowCount() < capacity {
		return true
	}

	return increaseCapacity && b.IncreaseRowsCapacity(capacity+1) > 0
}

// IncreaseRowsCapacity moves the rows into vectors of the next power of two
// >= max(newCapacity, RowCapacity()+1). It returns the new capacity, or -1
// if that exceeds MaxRowCapacity, in which case the block is unchanged.
//
// The replaced vectors are not returned to the pool: concurrent readers may
// still hold them.
func (b *DataBlock[K, V]) IncreaseRowsCapacity(newCapacity int) int {
	old := b.rows.Load()
	capacity := pool.BucketSize(max(newCapacity, old.capacity()+1))
	if capacity > b.maxRows {
		return -1
	}

	n := b.RowCount()
	r := &rows[K, V]{height: old.height, keys: b.arena.keys.Rent(capacity)}
	copy(r.keys, old.keys[:n])
	if old.values != nil {
		r.values = b.arena.values.Rent(capacity)
		copy(r.values, old.values[:n])
	}
	if old.children != nil {
		r.children = b.arena.children.Rent(capacity)
		copy(r.children, old.children[:n])
	}
	if old.columns != nil {
		r.columns = make([][]V, len(old.columns))
		for c, col := range old.columns {
			r.columns[c] = b.arena.values.Rent(capacity)
			copy(r.columns[c], col[:n])
		}
	}
	b.rows.Store(r)

	return capacity
}

// RefCount returns the current reference count.
func (b *DataBlock[K, V]) RefCount() int {
	return int(b.refs.Load())
}

// IsDisposed reports whether the block has been disposed.
func (b *DataBlock[K, V]) IsDisposed() bool {
	return b.disposed.Load()
}

// Increment adds a reference and returns the new count.
func (b *DataBlock[K, V]) Increment() int {
	if b.disposed.Load() {
		panic(errors.AssertionFailedf("%s: increment of a disposed block", b.handle))
	}

	return int(b.refs.Add(1))
}

// tryIncrement adds a reference unless the count is already zero.
func (b *DataBlock[K, V]) tryIncrement() bool {
	for {
		n := b.refs.Load()
		if n <= 0 || b.disposed.Load() {
			return false
		}
		if b.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Decrement drops a reference and returns the new count. Dropping the last
// reference disposes the block.
func (b *DataBlock[K, V]) Decrement() int {
	n := b.refs.Add(-1)
	if n < 0 {
		panic(errors.AssertionFailedf("%s: reference count is negative: %d", b.handle, n))
	}
	if n == 0 {
		b.dispose()
	}

	return int(n)
}

// dispose releases the children of a node, returns the vectors to the arena
// pools, unlinks the block from its neighbors and frees its arena slot.
func (b *DataBlock[K, V]) dispose() {
	if !b.disposed.CompareAndSwap(false, true) {
		panic(errors.AssertionFailedf("%s: block disposed twice", b.handle))
	}

	r, n := b.snapshot()
	for _, child := range r.children[:min(n, len(r.children))] {
		if child != nil {
			child.Decrement()
		}
	}

	if next := b.next.Swap(nil); next != nil {
		next.prev.CompareAndSwap(b, nil)
	}
	if prev := b.prev.Swap(nil); prev != nil {
		prev.next.CompareAndSwap(b, nil)
	}
	b.last.Store(nil)
	b.rows.Store(nil)
	b.hi.Store(-1)

	a := b.arena
	a.keys.Return(r.keys)
	if r.values != nil {
		a.values.Return(r.values)
	}
	if r.children != nil {
		a.children.Return(r.children)
	}
	for _, col := range r.columns {
		a.values.Return(col)
	}
	a.release(b)
}

// link makes right the right neighbor of left.
func link[K, V any](left, right *DataBlock[K, V]) {
	left.next.Store(right)
	right.prev.Store(left)
}
