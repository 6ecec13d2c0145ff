package blocktree

import (
	"fmt"
	"sync"

	"github.com/Spreads/Spreads-sub007/internal/pool"
)

// Handle addresses a block in an Arena without owning it. A handle outlives
// its block: once the block is released, Lookup and Acquire report that it
// is no longer present. The zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.index == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("block#%d.%d", h.index, h.gen)
}

// Arena allocates DataBlocks from a free list and owns the vector pools that
// back their rows. Released blocks go back on the free list and their slot
// generation is bumped, invalidating outstanding handles.
type Arena[K, V any] struct {
	mu     sync.Mutex
	blocks []*DataBlock[K, V]
	gens   []uint32
	free   []uint32
	live   int

	keys     *pool.VectorPool[K]
	values   *pool.VectorPool[V]
	children *pool.VectorPool[*DataBlock[K, V]]
}

// NewArena creates an empty Arena.
func NewArena[K, V any]() *Arena[K, V] {
	return &Arena[K, V]{
		keys:     pool.NewVectorPool[K](),
		values:   pool.NewVectorPool[V](),
		children: pool.NewVectorPool[*DataBlock[K, V]](),
	}
}

// allocate takes a block from the free list, or a new one, and resets it.
func (a *Arena[K, V]) allocate() *DataBlock[K, V] {
	a.mu.Lock()
	defer a.mu.Unlock()

	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.blocks))
		a.blocks = append(a.blocks, &DataBlock[K, V]{})
		a.gens = append(a.gens, 1)
	}
	a.live++

	b := a.blocks[idx]
	b.reset(a, Handle{index: idx + 1, gen: a.gens[idx]})

	return b
}

// release returns a disposed block to the free list.
func (a *Arena[K, V]) release(b *DataBlock[K, V]) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := b.handle.index - 1
	a.gens[idx]++
	a.free = append(a.free, idx)
	a.live--
}

func (a *Arena[K, V]) resolve(h Handle) (*DataBlock[K, V], bool) {
	if h.index == 0 || int(h.index) > len(a.blocks) {
		return nil, false
	}
	idx := h.index - 1
	if a.gens[idx] != h.gen {
		return nil, false
	}

	return a.blocks[idx], true
}

// Lookup returns the block addressed by h if it has not been released. The
// caller does not own a reference; use Acquire to keep the block alive.
func (a *Arena[K, V]) Lookup(h Handle) (*DataBlock[K, V], bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.resolve(h)
}

// Acquire returns the block addressed by h with its reference count
// incremented, or false if the block was released or is being disposed.
func (a *Arena[K, V]) Acquire(h Handle) (*DataBlock[K, V], bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.resolve(h)
	if !ok || !b.tryIncrement() {
		return nil, false
	}

	return b, true
}

// Live returns the number of allocated blocks that have not been released.
func (a *Arena[K, V]) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.live
}
