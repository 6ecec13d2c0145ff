package series

import (
	"cmp"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Spreads/Spreads-sub007/blocktree"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/internal/base"
	"github.com/Spreads/Spreads-sub007/internal/options"
	"github.com/cockroachdb/errors"
)

// Lookup is the direction of a key search.
type Lookup = blocktree.Lookup

// Lookup directions.
const (
	LT = blocktree.LT
	LE = blocktree.LE
	EQ = blocktree.EQ
	GE = blocktree.GE
	GT = blocktree.GT
)

// Entry is one row of a series.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Series is a sorted, append-only sequence of rows stored in a block tree.
//
// Appends are serialized by the series. Reads never lock: they snapshot
// Version, read the tree, and retry if NextVersion moved in the meantime.
// A read that keeps racing the writer gives up after the retry budget with
// errs.ErrBusy.
type Series[K, V any] struct {
	arena   *blocktree.Arena[K, V]
	tree    *blocktree.Tree[K, V]
	compare func(a, b K) int

	mu sync.Mutex
	// nextVersion is bumped before a write and version after it. They are
	// equal while no write is in progress.
	version     atomic.Uint64
	nextVersion atomic.Uint64
	closed      atomic.Bool

	maxRetries int
	logger     base.Logger
}

// New creates an empty series ordered by the natural order of K.
func New[K cmp.Ordered, V any](opts ...Option) (*Series[K, V], error) {
	return NewWithCompare[K, V](cmp.Compare[K], opts...)
}

// NewWithCompare creates an empty series ordered by compare.
//
// Returns:
//   - error: ErrInvalidOperation if compare is nil or an option is invalid
func NewWithCompare[K, V any](compare func(a, b K) int, opts ...Option) (*Series[K, V], error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if compare == nil {
		return nil, errors.Wrap(errs.ErrInvalidOperation, "series needs a key comparer")
	}

	arena := blocktree.NewArena[K, V]()
	tree, err := blocktree.New(arena, blocktree.Options[K]{
		MaxLeafSize:     cfg.maxLeafSize,
		MaxNodeSize:     cfg.maxNodeSize,
		InitialCapacity: cfg.initialCapacity,
		Compare:         compare,
	})
	if err != nil {
		return nil, err
	}

	return &Series[K, V]{
		arena:      arena,
		tree:       tree,
		compare:    compare,
		maxRetries: cfg.maxRetries,
		logger:     cfg.logger,
	}, nil
}

// Append adds a row after the last one.
//
// Returns:
//   - error: ErrOutOfOrderKey if key is not greater than the last key,
//     ErrDisposed if the series is closed
func (s *Series[K, V]) Append(key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return errors.Wrap(errs.ErrDisposed, "append to a closed series")
	}

	v := s.nextVersion.Add(1)
	err := s.tree.Append(key, value)
	s.version.Store(v)

	return err
}

// Len returns the number of rows.
func (s *Series[K, V]) Len() int {
	return s.tree.Len()
}

// Version returns the number of completed writes.
func (s *Series[K, V]) Version() uint64 {
	return s.version.Load()
}

// NextVersion returns the version the series will have once the write in
// progress, if any, completes.
func (s *Series[K, V]) NextVersion() uint64 {
	return s.nextVersion.Load()
}

// First returns the first row.
func (s *Series[K, V]) First() (Entry[K, V], bool, error) {
	pos, err := read(s, "First", s.first)

	return pos.entry, pos.leaf != nil, err
}

// Last returns the last row.
func (s *Series[K, V]) Last() (Entry[K, V], bool, error) {
	pos, err := read(s, "Last", s.last)

	return pos.entry, pos.leaf != nil, err
}

// TryGet returns the value stored under key.
func (s *Series[K, V]) TryGet(key K) (V, bool, error) {
	e, ok, err := s.TryFind(key, EQ)

	return e.Value, ok, err
}

// TryFind returns the row nearest to key in direction dir.
func (s *Series[K, V]) TryFind(key K, dir Lookup) (Entry[K, V], bool, error) {
	pos, err := read(s, "TryFind", func() position[K, V] {
		return s.seek(key, dir)
	})

	return pos.entry, pos.leaf != nil, err
}

// NewCursor returns a cursor positioned before the first row.
func (s *Series[K, V]) NewCursor() *Cursor[K, V] {
	return &Cursor[K, V]{s: s, index: -1}
}

// Close releases the block tree. Blocks still held by cursors are disposed
// when those cursors close. Close must not race with readers of the series.
func (s *Series[K, V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed.CompareAndSwap(false, true) {
		return errors.Wrap(errs.ErrDisposed, "series closed twice")
	}
	s.tree.Release()

	return nil
}

// position is the result of a read: a row and the leaf holding it, or the
// zero value if there is no such row.
type position[K, V any] struct {
	leaf  *blocktree.DataBlock[K, V]
	index int
	entry Entry[K, V]
}

func rowAt[K, V any](leaf *blocktree.DataBlock[K, V], i int) position[K, V] {
	if leaf == nil {
		return position[K, V]{}
	}
	k, v, ok := leaf.Row(i)
	if !ok {
		return position[K, V]{}
	}

	return position[K, V]{leaf: leaf, index: i, entry: Entry[K, V]{Key: k, Value: v}}
}

func (s *Series[K, V]) first() position[K, V] {
	return rowAt(s.tree.FirstBlock(), 0)
}

func (s *Series[K, V]) last() position[K, V] {
	leaf := s.tree.LastBlock()

	return rowAt(leaf, leaf.Hi())
}

func (s *Series[K, V]) seek(key K, dir Lookup) position[K, V] {
	leaf, i := s.tree.LookupKey(key, dir)

	return rowAt(leaf, i)
}

// read runs fn until it completes without a write starting or finishing
// meanwhile.
func read[K, V, T any](s *Series[K, V], op string, fn func() T) (T, error) {
	var zero T
	for range s.maxRetries + 1 {
		if s.closed.Load() {
			return zero, errors.Wrapf(errs.ErrDisposed, "%s on a closed series", op)
		}
		v := s.version.Load()
		if s.nextVersion.Load() == v {
			res := fn()
			if s.nextVersion.Load() == v {
				return res, nil
			}
		}
		runtime.Gosched()
	}

	s.logger.Errorf("series: %s gave up after %d retries at version %d", op, s.maxRetries, s.version.Load())

	return zero, errors.Wrapf(errs.ErrBusy, "%s after %d retries", op, s.maxRetries)
}
