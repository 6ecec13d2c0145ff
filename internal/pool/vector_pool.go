package pool

import (
	"math/bits"
	"sync"
)

// vectorBuckets is the number of power-of-two size classes, 1 << 0 .. 1 << 31.
const vectorBuckets = 32

// VectorPool pools typed slices in power-of-two size classes. It backs the
// row-key, value and child vectors of data blocks, so every rented vector has
// a power-of-two length.
type VectorPool[T any] struct {
	buckets [vectorBuckets]sync.Pool
}

// NewVectorPool creates an empty VectorPool.
func NewVectorPool[T any]() *VectorPool[T] {
	return &VectorPool[T]{}
}

// BucketSize returns the smallest power of two >= n, with a minimum of 1.
func BucketSize(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}

// Rent returns a zeroed slice whose length is BucketSize(n).
//
// Example:
//
//	keys := vp.Rent(100) // len(keys) == 128
//	defer vp.Return(keys)
func (p *VectorPool[T]) Rent(n int) []T {
	size := BucketSize(n)
	idx := bits.TrailingZeros(uint(size))
	if idx < vectorBuckets {
		if ptr, ok := p.buckets[idx].Get().(*[]T); ok && cap(*ptr) >= size {
			return (*ptr)[:size]
		}
	}

	return make([]T, size)
}

// Return clears v and puts it back into its size class. Slices whose
// capacity is not a power of two are dropped.
func (p *VectorPool[T]) Return(v []T) {
	c := cap(v)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	v = v[:c]
	clear(v)
	idx := bits.TrailingZeros(uint(c))
	if idx < vectorBuckets {
		p.buckets[idx].Put(&v)
	}
}
