package compress

import (
	"sync"

	"github.com/Spreads/Spreads-sub007/format"
	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains a hash table that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4Levels maps levels 1..9 to the high-compression depths. Level 0 selects
// the fast compressor.
var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// MaxLZ4Level is the highest accepted LZ4 level.
const MaxLZ4Level = len(lz4Levels) - 1

// LZ4Codec compresses blocks with the LZ4 block format. Blocks carry no frame
// header; the raw length is recorded by the caller.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// Method implements Codec.
func (LZ4Codec) Method() format.CompressionMethod {
	return format.CompressionLZ4
}

// CompressBlock compresses src into dst. Level 0 uses the fast compressor,
// levels 1..9 use the HC compressor at the matching depth.
//
// Returns 0 when LZ4 reports the block as incompressible and -1 on error,
// including a dst that is too small.
func (LZ4Codec) CompressBlock(src, dst []byte, level int) int {
	if len(src) == 0 {
		return -1
	}

	var (
		n   int
		err error
	)
	if level <= 0 {
		lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
		n, err = lc.CompressBlock(src, dst)
		lz4CompressorPool.Put(lc)
	} else {
		hc := lz4.CompressorHC{Level: lz4Levels[min(level, MaxLZ4Level)]}
		n, err = hc.CompressBlock(src, dst)
	}
	if err != nil {
		return -1
	}

	return n
}

// DecompressBlock decompresses src into dst and returns -1 on corrupted input
// or a dst that is too small.
func (LZ4Codec) DecompressBlock(src, dst []byte) int {
	if len(src) == 0 {
		return -1
	}

	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return -1
	}

	return n
}
