package compress

import (
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/header"
	"github.com/cockroachdb/errors"
)

// PayloadLengthSize is the size of the length field of variable-size frames.
const PayloadLengthSize = 4

// A frame is a DataTypeHeader, an optional timestamp and the payload. Binary
// values of a fixed size are stored inline:
//
//	[DataTypeHeader:4][Timestamp:8 if timestamped][payload:FixedSize]
//
// Everything else carries a length:
//
//	[DataTypeHeader:4][Timestamp:8 if timestamped][length:int32][payload]
//
// The payload of a compressed frame is the envelope [rawLength:int32][bytes].
// A negative rawLength stores abs(rawLength) bytes verbatim.
type frame struct {
	hdr    header.DataTypeHeader
	tsSize int
	fixed  bool
	length int
}

// IsFixedFrame reports whether frames with header h store their payload
// inline, without a length field.
func IsFixedFrame(h header.DataTypeHeader) bool {
	return h.IsBinary() && h.FixedSize() > 0
}

// FramePrefixSize returns the size of everything in front of the payload of a
// frame with header h.
func FramePrefixSize(h header.DataTypeHeader) int {
	n := header.Size
	if h.VersionAndFlags.IsTimestamped() {
		n += format.TimestampSize
	}
	if !IsFixedFrame(h) {
		n += PayloadLengthSize
	}

	return n
}

// lengthOffset is the offset of the length field. It also ends the timestamp.
func (f frame) lengthOffset() int {
	return header.Size + f.tsSize
}

func (f frame) bodyOffset() int {
	if f.fixed {
		return f.lengthOffset()
	}

	return f.lengthOffset() + PayloadLengthSize
}

func (f frame) total() int {
	return f.bodyOffset() + f.length
}

func parseFrame(src []byte) (frame, error) {
	hdr, err := header.ParseDataTypeHeader(src)
	if err != nil {
		return frame{}, err
	}

	f := frame{hdr: hdr, fixed: IsFixedFrame(hdr)}
	if hdr.VersionAndFlags.IsTimestamped() {
		f.tsSize = format.TimestampSize
	}
	if len(src) < f.bodyOffset() {
		return frame{}, errors.Wrapf(errs.ErrInvalidLength, "frame of %d bytes is shorter than its %d byte prefix",
			len(src), f.bodyOffset())
	}

	if f.fixed {
		f.length = hdr.FixedSize()
	} else {
		f.length = int(int32(le.Uint32(src[f.lengthOffset():])))
		if f.length < 0 {
			return frame{}, errors.Wrapf(errs.ErrInvalidLength, "negative payload length %d", f.length)
		}
	}
	if f.length > len(src)-f.bodyOffset() {
		return frame{}, errors.Wrapf(errs.ErrInvalidLength, "payload length %d, %d bytes remain",
			f.length, len(src)-f.bodyOffset())
	}

	return f, nil
}

// FrameSize returns the total size of the frame at the start of src.
func FrameSize(src []byte) (int, error) {
	f, err := parseFrame(src)
	if err != nil {
		return -1, err
	}

	return f.total(), nil
}

// FrameInfo describes the frame at the start of a buffer.
type FrameInfo struct {
	Header    header.DataTypeHeader
	Timestamp format.Timestamp
	// Size is the total size of the frame.
	Size int
	// Fixed is set for frames without a length field.
	Fixed bool
	// Body is the payload. It aliases the source and, for a compressed frame,
	// includes the raw-length prefix.
	Body []byte
	// RawLength is the size of the payload once decompressed.
	RawLength int
	// StoredRaw is set for a compressed frame whose envelope holds the
	// payload verbatim.
	StoredRaw bool
}

// InspectFrame parses the frame at the start of src without decompressing it.
//
// Returns:
//   - error: ErrInvalidHeaderSize or ErrInvalidLength for a truncated frame,
//     ErrCorrupted for a compressed frame without a raw length
func InspectFrame(src []byte) (FrameInfo, error) {
	f, err := parseFrame(src)
	if err != nil {
		return FrameInfo{}, err
	}

	info := FrameInfo{
		Header:    f.hdr,
		Size:      f.total(),
		Fixed:     f.fixed,
		Body:      src[f.bodyOffset():f.total()],
		RawLength: f.length,
	}
	if f.tsSize > 0 {
		info.Timestamp = format.Timestamp(le.Uint64(src[header.Size:]))
	}
	if !f.fixed && f.hdr.VersionAndFlags.IsCompressed() {
		if len(info.Body) < RawLengthSize {
			return FrameInfo{}, errors.Wrapf(errs.ErrCorrupted, "compressed payload of %d bytes has no raw length", f.length)
		}
		raw, compressed, err := PayloadRawLength(info.Body)
		if err != nil {
			return FrameInfo{}, err
		}
		info.RawLength = raw
		info.StoredRaw = !compressed
	}

	return info, nil
}

// AppendFrame appends an uncompressed frame of payload to dst. The timestamp
// is written only if h is timestamped. A fixed-size h takes a payload of
// exactly h.FixedSize() bytes.
func AppendFrame(dst []byte, h header.DataTypeHeader, ts format.Timestamp, payload []byte) []byte {
	h.VersionAndFlags.SetCompressionMethod(format.CompressionNone)
	h.VersionAndFlags.SetShuffled(false)
	fixed := IsFixedFrame(h)
	if fixed && len(payload) != h.FixedSize() {
		panic(errors.AssertionFailedf("%s frame takes %d payload bytes, got %d", h, h.FixedSize(), len(payload)))
	}

	var prefix [header.Size + format.TimestampSize + PayloadLengthSize]byte
	h.Put(prefix[:])
	n := header.Size
	if h.VersionAndFlags.IsTimestamped() {
		le.PutUint64(prefix[n:], uint64(ts))
		n += format.TimestampSize
	}
	if !fixed {
		le.PutUint32(prefix[n:], uint32(len(payload)))
		n += PayloadLengthSize
	}
	dst = append(dst, prefix[:n]...)

	return append(dst, payload...)
}

// CompressWithHeader compresses the frame at the start of source into
// destination with method.
//
// Frames whose payload is below cfg.CompressionLimit, fixed-size frames,
// frames that are already compressed, and method None are copied through
// unchanged. So are frames the codec cannot shrink; the header then keeps
// method None.
//
// destination must be at least as large as the source frame. A smaller
// destination is a broken caller and panics.
//
// Returns:
//   - int: bytes written to destination
//   - error: ErrInvalidLength for a malformed source frame, ErrNotSupported for
//     an invalid method
func CompressWithHeader(source, destination []byte, method format.CompressionMethod, cfg *Config) (int, error) {
	if !method.IsValid() {
		return -1, errors.Wrapf(errs.ErrNotSupported, "compression method %d", method)
	}
	f, err := parseFrame(source)
	if err != nil {
		return -1, err
	}
	if len(destination) < f.total() {
		panic(errors.AssertionFailedf("destination of %d bytes is smaller than the %d byte source frame",
			len(destination), f.total()))
	}
	cfg = orDefault(cfg)

	if method == format.CompressionNone || f.fixed || f.hdr.VersionAndFlags.IsCompressed() ||
		f.length < cfg.CompressionLimit {
		return copy(destination, source[:f.total()]), nil
	}

	payload := source[f.bodyOffset():f.total()]
	offset := f.bodyOffset() + RawLengthSize
	// The compressed frame must come out strictly smaller than the source.
	limit := len(payload) - RawLengthSize - 1
	if limit <= 0 {
		cfg.Metrics.fallback(method)
		return copy(destination, source[:f.total()]), nil
	}

	elemSize := 0
	if cfg.Shuffle {
		elemSize = ShuffleElementSize(f.hdr)
	}
	n, shuffled, err := compressPayload(payload, destination[offset:offset+limit], method, cfg, elemSize)
	if err != nil {
		return -1, err
	}
	if n <= 0 {
		return copy(destination, source[:f.total()]), nil
	}

	hdr := f.hdr
	hdr.VersionAndFlags.SetCompressionMethod(method)
	hdr.VersionAndFlags.SetShuffled(shuffled)
	hdr.Put(destination)
	copy(destination[header.Size:f.lengthOffset()], source[header.Size:f.lengthOffset()])
	le.PutUint32(destination[f.lengthOffset():], uint32(RawLengthSize+n))
	le.PutUint32(destination[f.bodyOffset():], uint32(len(payload)))

	return offset + n, nil
}

// DecompressWithHeader decompresses the frame at the start of source into
// destination and resets the header's compression method to None. An
// uncompressed frame is copied through, and so is the payload of an envelope
// that stores it verbatim.
//
// Returns:
//   - int: bytes written to destination
//   - error: ErrNotEnoughCapacity if destination cannot hold the raw frame,
//     ErrCorrupted if the codec rejects the payload, ErrInvalidLength for a
//     malformed frame
func DecompressWithHeader(source, destination []byte) (int, error) {
	f, err := parseFrame(source)
	if err != nil {
		return -1, err
	}

	if f.fixed || !f.hdr.VersionAndFlags.IsCompressed() {
		if len(destination) < f.total() {
			return -1, errors.Wrapf(errs.ErrNotEnoughCapacity, "frame needs %d bytes, have %d", f.total(), len(destination))
		}

		return copy(destination, source[:f.total()]), nil
	}

	if f.length < RawLengthSize {
		return -1, errors.Wrapf(errs.ErrCorrupted, "compressed payload of %d bytes has no raw length", f.length)
	}
	body := source[f.bodyOffset():f.total()]
	rawLen, compressed, err := PayloadRawLength(body)
	if err != nil {
		return -1, err
	}
	stored := body[RawLengthSize:]
	if !compressed && len(stored) != rawLen {
		return -1, errors.Wrapf(errs.ErrCorrupted, "stored payload has %d bytes, raw length says %d", len(stored), rawLen)
	}
	end := f.bodyOffset() + rawLen
	if len(destination) < end {
		return -1, errors.Wrapf(errs.ErrNotEnoughCapacity, "frame needs %d bytes, have %d", end, len(destination))
	}

	if compressed {
		elemSize := 0
		if f.hdr.VersionAndFlags.IsShuffled() {
			if elemSize = ShuffleElementSize(f.hdr); elemSize == 0 {
				return -1, errors.Wrapf(errs.ErrCorrupted, "shuffled frame %s has no element size", f.hdr)
			}
		}
		if err := decompressPayload(stored, destination[f.bodyOffset():end], f.hdr.VersionAndFlags.CompressionMethod(), elemSize); err != nil {
			return -1, err
		}
	} else {
		copy(destination[f.bodyOffset():end], stored)
	}

	hdr := f.hdr
	hdr.VersionAndFlags.SetCompressionMethod(format.CompressionNone)
	hdr.VersionAndFlags.SetShuffled(false)
	hdr.Put(destination)
	copy(destination[header.Size:f.lengthOffset()], source[header.Size:f.lengthOffset()])
	le.PutUint32(destination[f.lengthOffset():], uint32(rawLen))

	return end, nil
}
