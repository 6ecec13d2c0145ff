package series

import (
	"github.com/Spreads/Spreads-sub007/blocktree"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/cockroachdb/errors"
)

// Cursor moves over the rows of a series. It holds a reference to the leaf
// it is positioned on, so the leaf stays readable until the cursor moves
// away or closes.
//
// A Cursor is not safe for concurrent use; Clone it for another goroutine.
type Cursor[K, V any] struct {
	s       *Series[K, V]
	leaf    *blocktree.DataBlock[K, V]
	index   int
	current Entry[K, V]
	closed  bool
}

// Valid reports whether the cursor is positioned on a row.
func (c *Cursor[K, V]) Valid() bool {
	return c.leaf != nil
}

// Current returns the key and value at the cursor position.
func (c *Cursor[K, V]) Current() (K, V) {
	return c.current.Key, c.current.Value
}

// Key returns the key at the cursor position.
func (c *Cursor[K, V]) Key() K {
	return c.current.Key
}

// Value returns the value at the cursor position.
func (c *Cursor[K, V]) Value() V {
	return c.current.Value
}

// MoveFirst positions the cursor on the first row.
func (c *Cursor[K, V]) MoveFirst() (bool, error) {
	return c.move("MoveFirst", c.s.first)
}

// MoveLast positions the cursor on the last row.
func (c *Cursor[K, V]) MoveLast() (bool, error) {
	return c.move("MoveLast", c.s.last)
}

// MoveAt positions the cursor on the row nearest to key in direction dir.
func (c *Cursor[K, V]) MoveAt(key K, dir Lookup) (bool, error) {
	return c.move("MoveAt", func() position[K, V] {
		return c.s.seek(key, dir)
	})
}

// MoveNext advances to the next row. An unpositioned cursor moves to the
// first row. At the end it returns false and keeps its position, so a later
// call sees rows appended in the meantime.
func (c *Cursor[K, V]) MoveNext() (bool, error) {
	if c.leaf == nil && !c.closed {
		return c.MoveFirst()
	}

	return c.move("MoveNext", func() position[K, V] {
		if _, _, ok := c.leaf.Row(c.index); !ok {
			// The leaf became the root's parent level; find the row again.
			return c.s.seek(c.current.Key, GT)
		}
		if pos := rowAt(c.leaf, c.index+1); pos.leaf != nil {
			return pos
		}

		return rowAt(c.leaf.Next(), 0)
	})
}

// MovePrevious steps back to the previous row. An unpositioned cursor moves
// to the last row. At the start it returns false and keeps its position.
func (c *Cursor[K, V]) MovePrevious() (bool, error) {
	if c.leaf == nil && !c.closed {
		return c.MoveLast()
	}

	return c.move("MovePrevious", func() position[K, V] {
		if _, _, ok := c.leaf.Row(c.index); !ok {
			return c.s.seek(c.current.Key, LT)
		}
		if c.index > 0 {
			return rowAt(c.leaf, c.index-1)
		}
		prev := c.leaf.Previous()
		if prev == nil {
			return position[K, V]{}
		}

		return rowAt(prev, prev.Hi())
	})
}

func (c *Cursor[K, V]) move(op string, fn func() position[K, V]) (bool, error) {
	if c.closed {
		return false, errors.Wrapf(errs.ErrDisposed, "%s on a closed cursor", op)
	}
	pos, err := read(c.s, op, fn)
	if err != nil {
		return false, err
	}
	if pos.leaf == nil {
		return false, nil
	}

	c.attach(pos.leaf)
	c.index = pos.index
	c.current = pos.entry

	return true, nil
}

// attach moves the cursor's reference to leaf.
func (c *Cursor[K, V]) attach(leaf *blocktree.DataBlock[K, V]) {
	if leaf == c.leaf {
		return
	}
	leaf.Increment()
	if c.leaf != nil {
		c.leaf.Decrement()
	}
	c.leaf = leaf
}

// Clone returns an independent cursor at the same position.
func (c *Cursor[K, V]) Clone() *Cursor[K, V] {
	clone := *c
	if clone.leaf != nil {
		clone.leaf.Increment()
	}

	return &clone
}

// Close drops the cursor's leaf reference. Closing twice is a no-op.
func (c *Cursor[K, V]) Close() {
	if c.leaf != nil {
		c.leaf.Decrement()
		c.leaf = nil
	}
	c.closed = true
}
