package compress

import (
	"github.com/Spreads/Spreads-sub007/buffers"
	"github.com/Spreads/Spreads-sub007/endian"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/header"
	"github.com/cockroachdb/errors"
)

// RawLengthSize is the size of the raw-length prefix in front of compressed bytes.
const RawLengthSize = 4

var le = endian.GetLittleEndianEngine()

// Compress routes src to the codec of method at the level configured in cfg.
//
// Returns:
//   - int: bytes written to dst, or a non-positive value if the codec could
//     not produce a block in dst (too small or incompressible)
//   - error: ErrNotSupported for methods outside the 2-bit method code
func Compress(src, dst []byte, method format.CompressionMethod, cfg *Config) (int, error) {
	codec, err := GetCodec(method)
	if err != nil {
		return -1, err
	}
	cfg = orDefault(cfg)

	n := codec.CompressBlock(src, dst, cfg.Level(method))
	if n > 0 {
		cfg.Metrics.observe(method, len(src), n)
	}

	return n, nil
}

// Decompress routes src to the codec of method.
//
// Returns:
//   - int: bytes written to dst, or a non-positive value on corrupted input
//     or a dst that is too small
//   - error: ErrNotSupported for methods outside the 2-bit method code
func Decompress(src, dst []byte, method format.CompressionMethod) (int, error) {
	codec, err := GetCodec(method)
	if err != nil {
		return -1, err
	}

	return codec.DecompressBlock(src, dst), nil
}

// ShuffleElementSize returns the element size used to shuffle the payload of
// h, or 0 if h does not describe an array of fixed-size elements wider than a
// byte.
func ShuffleElementSize(h header.DataTypeHeader) int {
	switch h.TypeEnum() {
	case header.Array, header.TupleTN:
		elem := header.Scalar(h.TEOFS1).FixedSize()
		if elem > 1 {
			return elem
		}
	}

	return 0
}

// MaxEncodedPayloadSize returns the largest size EncodePayload can produce for
// a raw payload of rawLen bytes.
func MaxEncodedPayloadSize(rawLen int) int {
	return RawLengthSize + rawLen
}

// EncodePayload writes payload into dst as [rawLen int32][compressed bytes].
// When compression does not shrink the payload it is stored verbatim behind a
// negated length instead. A positive elemSize shuffles the payload first if
// cfg enables shuffling.
//
// Returns:
//   - int: bytes written to dst
//   - bool: whether the stored bytes are shuffled
//   - error: ErrNotEnoughCapacity if dst is smaller than MaxEncodedPayloadSize,
//     ErrNotSupported for an invalid method
func EncodePayload(payload, dst []byte, method format.CompressionMethod, cfg *Config, elemSize int) (int, bool, error) {
	if len(dst) < MaxEncodedPayloadSize(len(payload)) {
		return 0, false, errors.Wrapf(errs.ErrNotEnoughCapacity,
			"encoded payload needs %d bytes, have %d", MaxEncodedPayloadSize(len(payload)), len(dst))
	}
	cfg = orDefault(cfg)

	if method != format.CompressionNone && len(payload) > 0 {
		n, shuffled, err := compressPayload(payload, dst[RawLengthSize:RawLengthSize+len(payload)-1], method, cfg, elemSize)
		if err != nil {
			return 0, false, err
		}
		if n > 0 {
			le.PutUint32(dst, uint32(len(payload)))
			return RawLengthSize + n, shuffled, nil
		}
	}

	le.PutUint32(dst, uint32(-int32(len(payload))))
	copy(dst[RawLengthSize:], payload)

	return RawLengthSize + len(payload), false, nil
}

// PayloadRawLength returns the raw length recorded by EncodePayload and
// whether the stored bytes are compressed.
func PayloadRawLength(src []byte) (int, bool, error) {
	if len(src) < RawLengthSize {
		return 0, false, errors.Wrapf(errs.ErrInvalidLength, "payload of %d bytes has no raw length", len(src))
	}
	raw := int32(le.Uint32(src))
	if raw < 0 {
		return int(-raw), false, nil
	}

	return int(raw), raw > 0, nil
}

// DecodePayload reverses EncodePayload into dst. elemSize must be the shuffle
// element size if the payload was shuffled, 0 otherwise.
//
// Returns:
//   - int: the raw payload length written to dst
//   - error: ErrNotEnoughCapacity if dst is too small, ErrCorrupted or
//     ErrInvalidLength for a malformed payload
func DecodePayload(src, dst []byte, method format.CompressionMethod, elemSize int) (int, error) {
	rawLen, compressed, err := PayloadRawLength(src)
	if err != nil {
		return -1, err
	}
	if len(dst) < rawLen {
		return -1, errors.Wrapf(errs.ErrNotEnoughCapacity, "raw payload needs %d bytes, have %d", rawLen, len(dst))
	}
	body := src[RawLengthSize:]

	if !compressed {
		if len(body) != rawLen {
			return -1, errors.Wrapf(errs.ErrInvalidLength, "stored payload has %d bytes, expected %d", len(body), rawLen)
		}
		copy(dst, body)

		return rawLen, nil
	}

	if err := decompressPayload(body, dst[:rawLen], method, elemSize); err != nil {
		return -1, err
	}

	return rawLen, nil
}

// WillShuffle reports whether a payload of rawLen bytes with elements of
// elemSize bytes is shuffled before compression under cfg.
func WillShuffle(cfg *Config, elemSize, rawLen int) bool {
	return orDefault(cfg).Shuffle && elemSize > 1 && rawLen >= 2*elemSize
}

// compressPayload compresses payload into dst, shuffling first when enabled.
// A non-positive count means compression was ineffective.
func compressPayload(payload, dst []byte, method format.CompressionMethod, cfg *Config, elemSize int) (int, bool, error) {
	if len(dst) == 0 {
		cfg.Metrics.fallback(method)
		return -1, false, nil
	}

	src := payload
	shuffled := false
	if WillShuffle(cfg, elemSize, len(payload)) {
		tmp := buffers.Rent(len(payload))
		defer tmp.Dispose()
		Shuffle(elemSize, payload, tmp.Bytes())
		src = tmp.Bytes()
		shuffled = true
	}

	n, err := Compress(src, dst, method, cfg)
	if err != nil {
		return -1, false, err
	}
	if n <= 0 {
		cfg.Metrics.fallback(method)
		return n, false, nil
	}

	return n, shuffled, nil
}

// decompressPayload decompresses src into exactly len(dst) bytes.
func decompressPayload(src, dst []byte, method format.CompressionMethod, elemSize int) error {
	target := dst
	if elemSize > 1 {
		tmp := buffers.Rent(len(dst))
		defer tmp.Dispose()
		target = tmp.Bytes()
	}

	n, err := Decompress(src, target, method)
	if err != nil {
		return err
	}
	if n != len(dst) {
		return errors.Wrapf(errs.ErrCorrupted, "%s payload decoded to %d bytes, expected %d", method, n, len(dst))
	}
	if elemSize > 1 {
		Unshuffle(elemSize, target, dst)
	}

	return nil
}
