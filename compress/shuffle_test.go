package compress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShuffle_Layout(t *testing.T) {
	// three little-endian uint32 values followed by two trailing bytes
	src := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x11, 0x12, 0x13, 0x14,
		0x21, 0x22, 0x23, 0x24,
		0xAA, 0xBB,
	}
	dst := make([]byte, len(src))

	Shuffle(4, src, dst)
	require.Equal(t, []byte{
		0x01, 0x11, 0x21,
		0x02, 0x12, 0x22,
		0x03, 0x13, 0x23,
		0x04, 0x14, 0x24,
		0xAA, 0xBB,
	}, dst)

	back := make([]byte, len(src))
	Unshuffle(4, dst, back)
	require.Equal(t, src, back)
}

func TestShuffle_RoundTrip(t *testing.T) {
	for _, typeSize := range []int{1, 2, 3, 8, 16} {
		for _, size := range []int{0, 1, 7, 64, 1000} {
			src := randomData(uint64(typeSize*size+1), size)
			shuffled := make([]byte, size)
			back := make([]byte, size)

			Shuffle(typeSize, src, shuffled)
			Unshuffle(typeSize, shuffled, back)
			require.Equal(t, src, back, "typeSize=%d size=%d", typeSize, size)
		}
	}
}

func TestShuffle_InvalidArguments(t *testing.T) {
	require.Panics(t, func() { Shuffle(0, make([]byte, 4), make([]byte, 4)) })
	require.Panics(t, func() { Unshuffle(4, make([]byte, 4), make([]byte, 3)) })
}
