package buffers

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/Spreads/Spreads-sub007/internal/invariants"
	"github.com/cockroachdb/errors"
)

// memoryOwner is the pooled backing array shared by a RetainedMemory and all
// slices taken from it.
type memoryOwner struct {
	buf  []byte
	pool *Pool
	refs atomic.Int32
}

func (o *memoryOwner) release() {
	n := o.refs.Add(-1)
	if n < 0 {
		panic(errors.AssertionFailedf("retained memory reference count is negative: %d", n))
	}
	if n == 0 {
		o.pool.put(o)
	}
}

// RetainedMemory is a rented, reference-counted byte buffer.
//
// Every RetainedMemory obtained from Rent, Slice or Retain must be disposed
// exactly once. The backing array returns to its pool when the last handle
// is disposed. Disposing the same handle twice panics.
type RetainedMemory struct {
	owner    *memoryOwner
	b        []byte
	disposed atomic.Bool
}

func newRetainedMemory(owner *memoryOwner, b []byte) *RetainedMemory {
	m := &RetainedMemory{owner: owner, b: b}
	invariants.SetFinalizer(m, func(m *RetainedMemory) {
		if !m.disposed.Load() {
			fmt.Fprintf(os.Stderr, "buffers: retained memory of %d bytes was never disposed\n", len(m.b))
		}
	})

	return m
}

// Bytes returns the underlying byte slice.
func (m *RetainedMemory) Bytes() []byte {
	return m.b
}

// Buffer returns the memory as a DirectBuffer.
func (m *RetainedMemory) Buffer() DirectBuffer {
	return DirectBuffer(m.b)
}

// Len returns the length of the retained region.
func (m *RetainedMemory) Len() int {
	if m == nil {
		return 0
	}

	return len(m.b)
}

// IsEmpty reports whether m is nil or has zero length.
func (m *RetainedMemory) IsEmpty() bool {
	return m.Len() == 0
}

// Slice returns a new handle over [start, start+length) that shares the
// backing memory. The returned handle must be disposed independently.
func (m *RetainedMemory) Slice(start, length int) *RetainedMemory {
	if start < 0 || length < 0 || start+length > len(m.b) {
		panic(errors.AssertionFailedf("slice [%d, %d) out of range of %d bytes", start, start+length, len(m.b)))
	}
	m.owner.refs.Add(1)

	return newRetainedMemory(m.owner, m.b[start:start+length:start+length])
}

// Retain returns a new handle over the same region.
func (m *RetainedMemory) Retain() *RetainedMemory {
	return m.Slice(0, len(m.b))
}

// Dispose releases the handle. It is safe to call on a nil handle.
func (m *RetainedMemory) Dispose() {
	if m == nil {
		return
	}
	if !m.disposed.CompareAndSwap(false, true) {
		panic(errors.AssertionFailedf("retained memory disposed twice"))
	}
	owner := m.owner
	m.owner = nil
	m.b = nil
	owner.release()
}

// IsDisposed reports whether Dispose has been called on this handle.
func (m *RetainedMemory) IsDisposed() bool {
	return m.disposed.Load()
}
