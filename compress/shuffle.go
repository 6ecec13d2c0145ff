package compress

import "github.com/cockroachdb/errors"

// Shuffle transposes src, viewed as elements of typeSize bytes, so that all
// first bytes come first, then all second bytes, and so on. Trailing bytes
// that do not form a whole element are copied unchanged.
//
// Grouping bytes of equal significance makes arrays of numbers far more
// compressible. src and dst must have equal length and must not overlap.
func Shuffle(typeSize int, src, dst []byte) {
	checkShuffleArgs(typeSize, src, dst)

	n := len(src) / typeSize
	if typeSize == 1 || n < 2 {
		copy(dst, src)
		return
	}
	for i := range n {
		elem := src[i*typeSize : (i+1)*typeSize]
		for j, b := range elem {
			dst[j*n+i] = b
		}
	}
	tail := n * typeSize
	copy(dst[tail:], src[tail:])
}

// Unshuffle reverses Shuffle.
func Unshuffle(typeSize int, src, dst []byte) {
	checkShuffleArgs(typeSize, src, dst)

	n := len(src) / typeSize
	if typeSize == 1 || n < 2 {
		copy(dst, src)
		return
	}
	for i := range n {
		elem := dst[i*typeSize : (i+1)*typeSize]
		for j := range elem {
			elem[j] = src[j*n+i]
		}
	}
	tail := n * typeSize
	copy(dst[tail:], src[tail:])
}

func checkShuffleArgs(typeSize int, src, dst []byte) {
	if typeSize <= 0 || len(src) != len(dst) {
		panic(errors.AssertionFailedf("shuffle: type size %d, src %d bytes, dst %d bytes",
			typeSize, len(src), len(dst)))
	}
}
