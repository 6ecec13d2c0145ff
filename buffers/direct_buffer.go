// Package buffers provides the byte-slice abstractions used by the frame
// codecs: DirectBuffer for offset-addressed little-endian reads and writes,
// and RetainedMemory for pooled temporary buffers with scoped release.
package buffers

import (
	"github.com/Spreads/Spreads-sub007/endian"
	"github.com/Spreads/Spreads-sub007/internal/invariants"
)

var le = endian.GetLittleEndianEngine()

// DirectBuffer is a view over a byte slice with offset-addressed accessors.
//
// Accessors rely on Go's slice bounds checks; the explicit range assertions
// only run in invariant builds.
type DirectBuffer []byte

// Len returns the buffer length.
func (b DirectBuffer) Len() int {
	return len(b)
}

// Slice returns the sub-buffer [offset, offset+length).
func (b DirectBuffer) Slice(offset, length int) DirectBuffer {
	invariants.CheckBounds(offset, length, len(b))
	return b[offset : offset+length : offset+length]
}

// ReadInt32 reads a little-endian int32 at offset.
func (b DirectBuffer) ReadInt32(offset int) int32 {
	invariants.CheckBounds(offset, 4, len(b))
	return int32(le.Uint32(b[offset:]))
}

// WriteInt32 writes a little-endian int32 at offset.
func (b DirectBuffer) WriteInt32(offset int, v int32) {
	invariants.CheckBounds(offset, 4, len(b))
	le.PutUint32(b[offset:], uint32(v))
}

// ReadUint32 reads a little-endian uint32 at offset.
func (b DirectBuffer) ReadUint32(offset int) uint32 {
	invariants.CheckBounds(offset, 4, len(b))
	return le.Uint32(b[offset:])
}

// WriteUint32 writes a little-endian uint32 at offset.
func (b DirectBuffer) WriteUint32(offset int, v uint32) {
	invariants.CheckBounds(offset, 4, len(b))
	le.PutUint32(b[offset:], v)
}

// ReadInt64 reads a little-endian int64 at offset.
func (b DirectBuffer) ReadInt64(offset int) int64 {
	invariants.CheckBounds(offset, 8, len(b))
	return int64(le.Uint64(b[offset:]))
}

// WriteInt64 writes a little-endian int64 at offset.
func (b DirectBuffer) WriteInt64(offset int, v int64) {
	invariants.CheckBounds(offset, 8, len(b))
	le.PutUint64(b[offset:], uint64(v))
}

// CopyTo copies length bytes starting at offset into dst at dstOffset.
func (b DirectBuffer) CopyTo(offset int, dst DirectBuffer, dstOffset, length int) {
	invariants.CheckBounds(offset, length, len(b))
	invariants.CheckBounds(dstOffset, length, len(dst))
	copy(dst[dstOffset:dstOffset+length], b[offset:offset+length])
}
