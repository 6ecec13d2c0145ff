package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBucketSize(t *testing.T) {
	tests := map[int]int{
		-5: 1, 0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 100: 128, 4096: 4096, 4097: 8192,
	}
	for n, expected := range tests {
		require.Equal(t, expected, BucketSize(n), "n=%d", n)
	}
}

func TestVectorPool_RentReturn(t *testing.T) {
	vp := NewVectorPool[int64]()

	v := vp.Rent(5)
	require.Len(t, v, 8)
	for i := range v {
		v[i] = int64(i + 1)
	}
	vp.Return(v)

	// Whatever comes back must be zeroed.
	again := vp.Rent(7)
	require.Len(t, again, 8)
	for _, x := range again {
		require.Zero(t, x)
	}
}

func TestVectorPool_IgnoresOddCapacity(t *testing.T) {
	vp := NewVectorPool[string]()
	require.NotPanics(t, func() {
		vp.Return(make([]string, 3))
		vp.Return(nil)
	})
}
