package buffers

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectBuffer_ReadWrite(t *testing.T) {
	b := DirectBuffer(make([]byte, 24))

	b.WriteInt32(0, -42)
	b.WriteUint32(4, 0xDEADBEEF)
	b.WriteInt64(8, -1_234_567_890_123)
	b.WriteInt64(16, 1<<62)

	require.Equal(t, int32(-42), b.ReadInt32(0))
	require.Equal(t, uint32(0xDEADBEEF), b.ReadUint32(4))
	require.Equal(t, int64(-1_234_567_890_123), b.ReadInt64(8))
	require.Equal(t, int64(1<<62), b.ReadInt64(16))
	require.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, []byte(b[4:8]), "little-endian layout")
}

func TestDirectBuffer_SliceAndCopy(t *testing.T) {
	src := DirectBuffer([]byte{1, 2, 3, 4, 5, 6})
	dst := DirectBuffer(make([]byte, 6))

	s := src.Slice(2, 3)
	require.Equal(t, DirectBuffer{3, 4, 5}, s)
	require.Equal(t, 3, cap(s), "slice capacity is clipped")

	src.CopyTo(1, dst, 3, 3)
	require.Equal(t, DirectBuffer{0, 0, 0, 2, 3, 4}, dst)

	require.Panics(t, func() { _ = src.ReadInt64(0) })
}

func TestPool_Rent(t *testing.T) {
	tests := []struct {
		length   int
		capacity int
	}{
		{0, MinBucketSize},
		{1, MinBucketSize},
		{64, 64},
		{65, 128},
		{1000, 1024},
		{4096, 4096},
	}

	p := NewPool(0)
	for _, tt := range tests {
		m := p.Rent(tt.length)
		assert.Equal(t, tt.length, m.Len())
		assert.Equal(t, tt.capacity, cap(m.owner.buf))
		m.Dispose()
	}
	require.Equal(t, int64(0), p.Outstanding())
}

func TestPool_LargeBuffersAreNotRetained(t *testing.T) {
	p := NewPool(1024)

	m := p.Rent(4096)
	require.Equal(t, int64(1), p.Outstanding())
	m.Dispose()
	require.Equal(t, int64(0), p.Outstanding())
}

func TestRetainedMemory_SliceRefCounting(t *testing.T) {
	p := NewPool(0)

	m := p.Rent(16)
	copy(m.Bytes(), "0123456789abcdef")

	s := m.Slice(4, 4)
	require.Equal(t, []byte("4567"), s.Bytes())
	require.Equal(t, int32(2), m.owner.refs.Load())

	m.Dispose()
	require.Equal(t, int64(1), p.Outstanding(), "slice keeps the backing memory alive")
	require.Equal(t, []byte("4567"), s.Bytes())

	s.Dispose()
	require.Equal(t, int64(0), p.Outstanding())
}

func TestRetainedMemory_DoubleDispose(t *testing.T) {
	m := NewPool(0).Rent(8)
	m.Dispose()
	require.True(t, m.IsDisposed())
	require.Panics(t, func() { m.Dispose() })
}

func TestRetainedMemory_NilIsSafe(t *testing.T) {
	var m *RetainedMemory
	require.Equal(t, 0, m.Len())
	require.True(t, m.IsEmpty())
	require.NotPanics(t, func() { m.Dispose() })
}

func TestPool_Concurrent(t *testing.T) {
	p := NewPool(0)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 200 {
				m := p.Rent(32 + i*g)
				m.Bytes()[0] = byte(i)
				r := m.Retain()
				m.Dispose()
				r.Dispose()
			}
		}(g)
	}
	wg.Wait()

	require.Equal(t, int64(0), p.Outstanding())
}
