package series

import "github.com/Spreads/Spreads-sub007/blocktree"

// Bookmark records a cursor position without holding its leaf. Resuming it
// fails once the leaf has been released.
type Bookmark[K any] struct {
	handle blocktree.Handle
	index  int
	key    K
}

// Key returns the key the bookmark points at.
func (b Bookmark[K]) Key() K {
	return b.key
}

// Bookmark returns the current position, or false if the cursor is not
// positioned.
func (c *Cursor[K, V]) Bookmark() (Bookmark[K], bool) {
	if c.leaf == nil {
		return Bookmark[K]{}, false
	}

	return Bookmark[K]{handle: c.leaf.Handle(), index: c.index, key: c.current.Key}, true
}

// Resume returns a cursor positioned at bm. It reports false if the leaf
// bm points into was released. When the row has moved to another block, as
// the root leaf's rows do on the first split, the cursor finds it by key.
func (s *Series[K, V]) Resume(bm Bookmark[K]) (*Cursor[K, V], bool, error) {
	leaf, ok := s.arena.Acquire(bm.handle)
	if !ok {
		return nil, false, nil
	}

	c := &Cursor[K, V]{s: s, leaf: leaf, index: bm.index}
	c.current.Key = bm.key
	found, err := c.move("Resume", func() position[K, V] {
		if pos := rowAt(leaf, bm.index); pos.leaf != nil && s.compare(pos.entry.Key, bm.key) == 0 {
			return pos
		}

		return s.seek(bm.key, EQ)
	})
	if err != nil || !found {
		c.Close()
		return nil, false, err
	}

	return c, true, nil
}
