package blocktree

import "slices"

// Lookup is the direction of a key search.
type Lookup int8

const (
	// LT finds the greatest key strictly less than the target.
	LT Lookup = iota
	// LE finds the greatest key less than or equal to the target.
	LE
	// EQ finds the target key exactly.
	EQ
	// GE finds the smallest key greater than or equal to the target.
	GE
	// GT finds the smallest key strictly greater than the target.
	GT
)

func (d Lookup) String() string {
	switch d {
	case LT:
		return "LT"
	case LE:
		return "LE"
	case EQ:
		return "EQ"
	case GE:
		return "GE"
	case GT:
		return "GT"
	default:
		return "Unknown"
	}
}

// LookupKey searches for key below b. Internal levels are descended through
// the right-most child whose first key is <= key; the leaf search falls back
// to the neighboring leaf when the match lies outside the leaf.
//
// It returns the leaf holding the match and the row index, or nil and -1.
func (b *DataBlock[K, V]) LookupKey(key K, dir Lookup, cmp func(a, b K) int) (*DataBlock[K, V], int) {
	for {
		r, n := b.snapshot()
		if r.height == 0 {
			return lookupLeaf(b, r.keys[:n], key, dir, cmp)
		}
		if n == 0 {
			return nil, -1
		}
		i, found := slices.BinarySearchFunc(r.keys[:n], key, cmp)
		if !found {
			i = max(i-1, 0)
		}
		child := r.children[i]
		if child == nil {
			// Only seen by readers racing a root split; they retry.
			return nil, -1
		}
		b = child
	}
}

func lookupLeaf[K, V any](leaf *DataBlock[K, V], keys []K, key K, dir Lookup, cmp func(a, b K) int) (*DataBlock[K, V], int) {
	i, found := slices.BinarySearchFunc(keys, key, cmp)

	switch dir {
	case EQ:
		if found {
			return leaf, i
		}
	case GE:
		if i < len(keys) {
			return leaf, i
		}
		return firstRow(leaf.Next())
	case GT:
		if found {
			i++
		}
		if i < len(keys) {
			return leaf, i
		}
		return firstRow(leaf.Next())
	case LE:
		if found {
			return leaf, i
		}
		if i > 0 {
			return leaf, i - 1
		}
		return lastRow(leaf.Previous())
	case LT:
		if i > 0 {
			return leaf, i - 1
		}
		return lastRow(leaf.Previous())
	}

	return nil, -1
}

func firstRow[K, V any](b *DataBlock[K, V]) (*DataBlock[K, V], int) {
	if b == nil || b.RowCount() == 0 {
		return nil, -1
	}

	return b, 0
}

func lastRow[K, V any](b *DataBlock[K, V]) (*DataBlock[K, V], int) {
	if b == nil {
		return nil, -1
	}
	if hi := b.Hi(); hi >= 0 {
		return b, hi
	}

	return nil, -1
}

// LookupKey searches the tree for key in direction dir.
func (t *Tree[K, V]) LookupKey(key K, dir Lookup) (*DataBlock[K, V], int) {
	return t.root.LookupKey(key, dir, t.opts.Compare)
}
