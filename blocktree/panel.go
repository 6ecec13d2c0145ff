package blocktree

import (
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/internal/pool"
	"github.com/cockroachdb/errors"
)

// CreateForPanel allocates a leaf that stores columnCount values per row in
// separate column vectors. Capacity is rounded up to a power of two.
func CreateForPanel[K, V any](arena *Arena[K, V], rowCapacity, columnCount int) *DataBlock[K, V] {
	if columnCount < 1 {
		panic(errors.AssertionFailedf("panel needs at least one column, got %d", columnCount))
	}
	b := arena.allocate()
	capacity := pool.BucketSize(rowCapacity)
	columns := make([][]V, columnCount)
	for c := range columns {
		columns[c] = arena.values.Rent(capacity)
	}
	b.columnCount = columnCount
	b.rows.Store(&rows[K, V]{keys: arena.keys.Rent(capacity), columns: columns})

	return b
}

// ColumnCount returns the number of value columns of a panel, 0 otherwise.
func (b *DataBlock[K, V]) ColumnCount() int {
	return b.columnCount
}

// AppendRow appends a key with one value per column, growing the block when
// it is full.
//
// Returns:
//   - error: ErrInvalidOperation if the block is not a panel or values has
//     the wrong width, ErrCapacityExceeded if the block cannot grow
func (b *DataBlock[K, V]) AppendRow(key K, values []V) error {
	if b.columnCount == 0 {
		return errors.Wrap(errs.ErrInvalidOperation, "AppendRow on a block without columns")
	}
	if len(values) != b.columnCount {
		return errors.Wrapf(errs.ErrInvalidOperation, "row has %d values, panel has %d columns", len(values), b.columnCount)
	}
	if !b.ensureRoom(true) {
		return errors.Wrapf(errs.ErrCapacityExceeded, "panel is full at %d rows", b.RowCapacity())
	}

	r := b.rows.Load()
	i := b.Hi() + 1
	r.keys[i] = key
	for c, v := range values {
		r.columns[c][i] = v
	}
	b.hi.Store(int64(i))

	return nil
}

// PanelValue returns the value in column col of row i.
func (b *DataBlock[K, V]) PanelValue(i, col int) V {
	return b.rows.Load().columns[col][i]
}

// RowValues copies the values of row i into dst, which is grown as needed,
// and returns it.
func (b *DataBlock[K, V]) RowValues(i int, dst []V) []V {
	r := b.rows.Load()
	dst = dst[:0]
	for _, col := range r.columns {
		dst = append(dst, col[i])
	}

	return dst
}
