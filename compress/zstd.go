package compress

import (
	"fmt"
	"sync"

	"github.com/Spreads/Spreads-sub007/format"
	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd decoder operates without allocations after a
// warmup, so it is kept around between calls.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPools holds one encoder pool per speed level. Index 0 is unused.
var zstdEncoderPools = [...]*sync.Pool{
	zstd.SpeedFastest:           newZstdEncoderPool(zstd.SpeedFastest),
	zstd.SpeedDefault:           newZstdEncoderPool(zstd.SpeedDefault),
	zstd.SpeedBetterCompression: newZstdEncoderPool(zstd.SpeedBetterCompression),
	zstd.SpeedBestCompression:   newZstdEncoderPool(zstd.SpeedBestCompression),
}

func newZstdEncoderPool(level zstd.EncoderLevel) *sync.Pool {
	return &sync.Pool{
		New: func() any {
			encoder, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(level),
				zstd.WithEncoderConcurrency(1),
				zstd.WithEncoderCRC(false),
			)
			if err != nil {
				panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
			}

			return encoder
		},
	}
}

// ZstdCodec compresses blocks as single Zstandard frames.
//
// Levels follow the zstd command line scale (1..22) and are mapped onto the
// four speed levels the pure-Go encoder implements.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// Method implements Codec.
func (ZstdCodec) Method() format.CompressionMethod {
	return format.CompressionZstd
}

// CompressBlock compresses src into dst. It returns -1 if the frame does not
// fit into dst.
func (ZstdCodec) CompressBlock(src, dst []byte, level int) int {
	if len(src) == 0 || len(dst) == 0 {
		return -1
	}

	pool := zstdEncoderPools[zstd.EncoderLevelFromZstd(level)]
	encoder, _ := pool.Get().(*zstd.Encoder)
	defer pool.Put(encoder)

	// EncodeAll appends; capping the capacity forces a reallocation instead of
	// a write past len(dst).
	out := encoder.EncodeAll(src, dst[:0:len(dst)])
	if !sameBacking(out, dst) {
		return -1
	}

	return len(out)
}

// DecompressBlock decompresses a single frame from src into dst. It returns
// -1 on corrupted input or when the output does not fit into dst.
func (ZstdCodec) DecompressBlock(src, dst []byte) int {
	if len(src) == 0 || len(dst) == 0 {
		return -1
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(src, dst[:0:len(dst)])
	if err != nil || !sameBacking(out, dst) {
		return -1
	}

	return len(out)
}

// sameBacking reports whether out was written in place into dst.
func sameBacking(out, dst []byte) bool {
	return len(out) > 0 && len(out) <= len(dst) && &out[0] == &dst[0]
}
