package compress

import (
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/cockroachdb/errors"
)

// Codec compresses and decompresses single blocks into caller-owned memory.
//
// Neither method allocates its output: both write at most len(dst) bytes and
// return the number of bytes written. A non-positive result means the block
// could not be produced in dst, either because dst is too small, the input is
// not compressible, or (for DecompressBlock) the input is corrupted. Callers
// treat any non-positive result as "fall back" on the compression side and as
// corruption on the decompression side.
//
// Implementations must be safe for concurrent use.
type Codec interface {
	// Method returns the 2-bit method code stored in frame headers.
	Method() format.CompressionMethod

	// CompressBlock compresses src into dst at the given codec-specific level.
	CompressBlock(src, dst []byte, level int) int

	// DecompressBlock decompresses src into dst. dst is sized to the raw length
	// recorded in the frame.
	DecompressBlock(src, dst []byte) int
}

var builtinCodecs = [...]Codec{
	format.CompressionNone: NoOpCodec{},
	format.CompressionZlib: ZlibCodec{},
	format.CompressionLZ4:  LZ4Codec{},
	format.CompressionZstd: ZstdCodec{},
}

// GetCodec retrieves the built-in Codec for the specified compression method.
//
// Returns:
//   - Codec: the codec for method
//   - error: ErrNotSupported if method does not fit the 2-bit method code
func GetCodec(method format.CompressionMethod) (Codec, error) {
	if !method.IsValid() {
		return nil, errors.Wrapf(errs.ErrNotSupported, "compression method %d", method)
	}

	return builtinCodecs[method], nil
}
