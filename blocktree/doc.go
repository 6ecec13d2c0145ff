// Package blocktree implements the append-optimized block tree that stores
// the rows of a sorted series.
//
// # Blocks
//
// A DataBlock is a node of the tree. Leaves store keys and values in pooled
// power-of-two vectors, either one value vector (CreateForSeries) or one
// vector per column (CreateForPanel). Internal blocks store the first key of
// each child together with the child.
//
// Blocks live in an Arena, which recycles them through a free list and
// addresses them by Handle. A Handle is a weak reference: it does not keep
// the block alive and stops resolving once the block is released.
//
// Blocks are reference counted. A parent holds one reference to each child,
// the tree holds one to the root, and cursors hold one to the leaf they are
// on. Dropping the last reference disposes the block: its vectors return to
// the arena pools and its children are released in turn.
//
// # Appending
//
//	tree, err := blocktree.New(blocktree.NewArena[int64, float64](),
//		blocktree.Options[int64]{Compare: cmp.Compare[int64]})
//	err = tree.Append(1, 10.5)
//	leaf, i := tree.LookupKey(1, blocktree.LE)
//
// Rows are appended in key order only. A full leaf first doubles its
// capacity, up to Options.MaxLeafSize, and then splits: a new right sibling
// takes the row and is indexed by the parent level.
//
// # Concurrency
//
// A tree has a single writer. Readers may run concurrently with it: block
// storage is replaced atomically and a row becomes visible only after it is
// written. Readers crossing a split can still observe a stale shape, so they
// must validate their reads against a version counter the way series.Series
// does.
package blocktree
