package buffers

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

const (
	// MinBucketSize is the smallest size class handed out by a Pool.
	MinBucketSize = 64
	// DefaultMaxPooledSize is the largest size class a default Pool retains.
	DefaultMaxPooledSize = 1024 * 1024 * 8 // 8MiB

	minBucketShift = 6
	numBuckets     = 32
)

// Pool hands out RetainedMemory backed by power-of-two size classes.
//
// It uses one sync.Pool per size class. Size classes above maxPooled are
// allocated on demand and dropped on release to avoid retaining overly large
// buffers.
type Pool struct {
	buckets     [numBuckets]sync.Pool
	maxPooled   int
	outstanding atomic.Int64
}

// NewPool creates a Pool that retains buffers up to maxPooled bytes.
func NewPool(maxPooled int) *Pool {
	if maxPooled <= 0 {
		maxPooled = DefaultMaxPooledSize
	}

	return &Pool{maxPooled: maxPooled}
}

// bucketFor returns the size-class index and capacity for n bytes.
func bucketFor(n int) (int, int) {
	if n <= MinBucketSize {
		return 0, MinBucketSize
	}
	shift := bits.Len(uint(n - 1))

	return shift - minBucketShift, 1 << shift
}

// Rent returns RetainedMemory of exactly minLength bytes whose capacity is
// rounded up to the next size class. The memory is not zeroed.
func (p *Pool) Rent(minLength int) *RetainedMemory {
	if minLength < 0 {
		minLength = 0
	}
	idx, capacity := bucketFor(minLength)

	var owner *memoryOwner
	if capacity <= p.maxPooled && idx < numBuckets {
		owner, _ = p.buckets[idx].Get().(*memoryOwner)
	}
	if owner == nil {
		owner = &memoryOwner{buf: make([]byte, capacity)}
	}
	owner.pool = p
	owner.refs.Store(1)
	p.outstanding.Add(1)

	return newRetainedMemory(owner, owner.buf[:minLength:minLength])
}

func (p *Pool) put(o *memoryOwner) {
	p.outstanding.Add(-1)
	capacity := cap(o.buf)
	if capacity > p.maxPooled {
		// Discard overly large buffers to prevent memory bloat
		return
	}
	idx, _ := bucketFor(capacity)
	p.buckets[idx].Put(o)
}

// Outstanding returns the number of rented backing buffers not yet returned.
func (p *Pool) Outstanding() int64 {
	return p.outstanding.Load()
}

var defaultPool = NewPool(DefaultMaxPooledSize)

// DefaultPool returns the process-wide pool.
func DefaultPool() *Pool {
	return defaultPool
}

// Rent rents memory from the default pool.
func Rent(minLength int) *RetainedMemory {
	return defaultPool.Rent(minLength)
}
