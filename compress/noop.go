package compress

import "github.com/Spreads/Spreads-sub007/format"

// NoOpCodec is the codec of format.CompressionNone: a bounded copy.
//
// It is useful as a baseline when measuring codec overhead and is what the
// dispatcher uses when a frame is stored uncompressed.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

// Method implements Codec.
func (NoOpCodec) Method() format.CompressionMethod {
	return format.CompressionNone
}

// CompressBlock copies src into dst. It returns -1 if dst is too small.
func (NoOpCodec) CompressBlock(src, dst []byte, _ int) int {
	return boundedCopy(src, dst)
}

// DecompressBlock copies src into dst. It returns -1 if dst is too small.
func (NoOpCodec) DecompressBlock(src, dst []byte) int {
	return boundedCopy(src, dst)
}

func boundedCopy(src, dst []byte) int {
	if len(dst) < len(src) {
		return -1
	}

	return copy(dst, src)
}
