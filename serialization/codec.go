package serialization

import (
	"reflect"

	"github.com/Spreads/Spreads-sub007/buffers"
	"github.com/Spreads/Spreads-sub007/compress"
	"github.com/Spreads/Spreads-sub007/endian"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/header"
	"github.com/Spreads/Spreads-sub007/internal/base"
	"github.com/Spreads/Spreads-sub007/internal/options"
	"github.com/cockroachdb/errors"
)

// PayloadLengthSize is the size of the length prefix of variable-size payloads.
const PayloadLengthSize = compress.PayloadLengthSize

// codecConfig collects the options of a Codec.
type codecConfig struct {
	method format.CompressionMethod
	cfg    *compress.Config
	logger base.Logger
	pool   *buffers.Pool
}

// Option configures a Codec.
type Option = options.Option[*codecConfig]

// WithCompression compresses variable-size payloads with method.
//
// Returns:
//   - error: ErrNotSupported if method is not a valid 2-bit method code
func WithCompression(method format.CompressionMethod) Option {
	return options.New(func(c *codecConfig) error {
		if !method.IsValid() {
			return errors.Wrapf(errs.ErrNotSupported, "compression method %d", method)
		}
		c.method = method

		return nil
	})
}

// WithCompressionConfig sets the levels, shuffle switch and metrics used when
// compressing payloads.
func WithCompressionConfig(cfg *compress.Config) Option {
	return options.NoError(func(c *codecConfig) {
		if cfg != nil {
			c.cfg = cfg
		}
	})
}

// WithLogger sets the logger that reports compression failures.
func WithLogger(logger base.Logger) Option {
	return options.NoError(func(c *codecConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithBufferPool sets the pool temporary payload buffers are rented from.
func WithBufferPool(pool *buffers.Pool) Option {
	return options.NoError(func(c *codecConfig) {
		if pool != nil {
			c.pool = pool
		}
	})
}

// Codec writes and reads self-describing frames of T.
//
// A frame is the 4-byte DataTypeHeader, an optional 8-byte timestamp and the
// payload. Binary values of a fixed size are stored inline:
//
//	[header][timestamp?][payload]
//
// Everything else carries a length prefix:
//
//	[header][timestamp?][length int32][payload]
//
// With compression enabled the payload of a variable-size frame is the
// envelope [rawLength int32][bytes] produced by compress.EncodePayload.
//
// A Codec is safe for concurrent use.
type Codec[T any] struct {
	ser        Serializer[T]
	fixedArray FixedArraySerializer[T]
	header     header.DataTypeHeader
	elemSize   int

	method format.CompressionMethod
	cfg    *compress.Config
	logger base.Logger
	pool   *buffers.Pool
}

// NewCodec creates a Codec for T. It uses the serializer registered for T, or
// a built-in one: packed little-endian values for fixed-size types, strings,
// byte slices and slices of fixed-size elements, and JSON for anything else.
//
// Returns:
//   - error: ErrBigEndianUnsupported on big-endian hosts, or an option error
func NewCodec[T any](opts ...Option) (*Codec[T], error) {
	if s, ok := Lookup[T](); ok {
		return NewCodecWith(s, opts...)
	}

	c, err := newCodec[T](opts...)
	if err != nil {
		return nil, err
	}
	sh := shapeOf(reflect.TypeFor[T]())
	c.ser = builtinSerializer[T](sh)
	if js, ok := c.ser.(*jsonSerializer[T]); ok {
		js.pool = c.pool
	}
	c.header = sh.header
	c.header.VersionAndFlags.SetConverterVersion(builtinVersion)
	c.elemSize = compress.ShuffleElementSize(c.header)

	return c, nil
}

// NewCodecWith creates a Codec that uses s regardless of the registry.
//
// Returns:
//   - error: ErrInvalidOperation for an invalid serializer, ErrBadTypeEnum for
//     an out of range known type id, ErrFixedSizeOutOfRange for a fixed size
//     no header can describe
func NewCodecWith[T any](s Serializer[T], opts ...Option) (*Codec[T], error) {
	if s == nil {
		return nil, errors.Wrap(errs.ErrInvalidOperation, "nil serializer")
	}
	if v := s.SerializerVersion(); v < 1 || v > MaxSerializerVersion {
		return nil, errors.Wrapf(errs.ErrInvalidOperation, "serializer version %d is not in 1..%d", v, MaxSerializerVersion)
	}

	c, err := newCodec[T](opts...)
	if err != nil {
		return nil, err
	}
	c.ser = s
	if fa, ok := s.(FixedArraySerializer[T]); ok {
		if header.Scalar(fa.ElementType()).FixedSize() <= 0 {
			return nil, errors.Wrapf(errs.ErrInvalidOperation, "array element %s has no fixed size", fa.ElementType())
		}
		c.fixedArray = fa
		c.header = header.NewTupleTN(fa.ElementType(), 0)
	} else if c.header, err = serializerHeader(s); err != nil {
		return nil, err
	}
	c.header.VersionAndFlags.SetConverterVersion(s.SerializerVersion())
	c.elemSize = compress.ShuffleElementSize(c.header)

	return c, nil
}

func newCodec[T any](opts ...Option) (*Codec[T], error) {
	if err := endian.EnsureLittleEndianHost(); err != nil {
		return nil, err
	}
	cc := &codecConfig{
		method: format.CompressionNone,
		cfg:    compress.DefaultConfig(),
		logger: base.DefaultLogger{},
		pool:   buffers.DefaultPool(),
	}
	if err := options.Apply(cc, opts...); err != nil {
		return nil, err
	}

	return &Codec[T]{method: cc.method, cfg: cc.cfg, logger: cc.logger, pool: cc.pool}, nil
}

// serializerHeader derives the header of a custom serializer from what it
// reports about itself.
func serializerHeader[T any](s Serializer[T]) (header.DataTypeHeader, error) {
	if size := s.FixedSize(); size > 0 {
		h := opaqueFixedHeader(size)
		if h.IsZero() {
			return h, errors.Wrapf(errs.ErrFixedSizeOutOfRange, "fixed size %d", size)
		}

		return h, nil
	}
	if id := s.KnownTypeID(); id != 0 {
		return header.NewUserType(id)
	}

	return scalarHeader(header.Binary), nil
}

// Header returns the header shared by every frame of T, without per-frame
// flags. Fixed array codecs report an element count of zero.
func (c *Codec[T]) Header() header.DataTypeHeader {
	return c.header
}

// Method returns the compression method applied to variable-size payloads.
func (c *Codec[T]) Method() format.CompressionMethod {
	return c.method
}

// headerFor returns the header of a single value.
func (c *Codec[T]) headerFor(value T) (header.DataTypeHeader, error) {
	if c.fixedArray == nil {
		return c.header, nil
	}

	return c.header.WithTupleTNCount(c.fixedArray.ElementCount(value))
}

func prefixSize(timestamped bool) int {
	if timestamped {
		return header.Size + format.TimestampSize
	}

	return header.Size
}

func wrongSize(op string, declared, actual int) error {
	return errors.WithAssertionFailure(errors.Wrapf(errs.ErrWrongSerializerImplementation,
		"%s: declared %d bytes, got %d", op, declared, actual))
}

// SizeOf returns the size of the frame of value. Variable-size values may
// also return a temporary buffer holding the prepared payload; pass it to
// WritePrepared, which disposes it, or dispose it yourself.
func (c *Codec[T]) SizeOf(value T, timestamped bool) (int, *buffers.RetainedMemory, error) {
	h, err := c.headerFor(value)
	if err != nil {
		return -1, nil, err
	}
	prefix := prefixSize(timestamped)
	if compress.IsFixedFrame(h) {
		return prefix + h.FixedSize(), nil, nil
	}

	size, temp, err := c.payloadSizeOf(value)
	if err != nil {
		return -1, nil, err
	}

	return prefix + PayloadLengthSize + size, temp, nil
}

// payloadSizeOf returns the size of the variable-size payload of value. When
// compression is enabled and the value is not empty, the returned buffer
// holds the encoded envelope; otherwise it is the serializer's prebuilt
// payload, if any.
func (c *Codec[T]) payloadSizeOf(value T) (int, *buffers.RetainedMemory, error) {
	rawSize, temp, err := c.ser.SizeOf(value)
	if err != nil {
		temp.Dispose()
		return -1, nil, err
	}
	if temp != nil && temp.Len() != rawSize {
		actual := temp.Len()
		temp.Dispose()
		panic(wrongSize("SizeOf buffer", rawSize, actual))
	}
	if c.method == format.CompressionNone {
		return rawSize, temp, nil
	}
	if rawSize <= 0 {
		temp.Dispose()
		return 0, nil, nil
	}

	return c.sizeOfCompressed(value, rawSize, temp)
}

// sizeOfCompressed serializes value unless raw already holds it, and encodes
// the payload into a new buffer. raw is disposed.
func (c *Codec[T]) sizeOfCompressed(value T, rawSize int, raw *buffers.RetainedMemory) (int, *buffers.RetainedMemory, error) {
	prebuilt := raw != nil
	if !prebuilt {
		raw = c.pool.Rent(rawSize)
	}
	defer raw.Dispose()

	if !prebuilt {
		n, err := c.ser.Write(value, raw.Buffer())
		if err != nil {
			return -1, nil, err
		}
		if n != rawSize {
			panic(wrongSize("Write", rawSize, n))
		}
	}

	encoded := c.pool.Rent(compress.MaxEncodedPayloadSize(rawSize))
	n, _, err := compress.EncodePayload(raw.Bytes(), encoded.Bytes(), c.method, c.cfg, c.elemSize)
	if err != nil {
		encoded.Dispose()
		c.logger.Errorf("serialization: %s payload of %d bytes: %v", c.method, rawSize, err)
		return -1, nil, err
	}
	out := encoded.Slice(0, n)
	encoded.Dispose()

	return n, out, nil
}

// Write writes a frame of value into dst. A non-nil ts adds a timestamp. A
// non-nil slot is checked against, or populated with, the header of value.
//
// Returns:
//   - int: bytes written
//   - error: ErrHeaderMismatch, ErrNotEnoughCapacity, or a serializer error
func (c *Codec[T]) Write(dst []byte, value T, ts *format.Timestamp, slot *header.DataTypeHeader) (int, error) {
	return c.WritePrepared(dst, value, ts, nil, slot)
}

// WritePrepared is Write with the temporary buffer returned by SizeOf. The
// buffer is disposed on every path, including failures.
//
// Returns:
//   - int: bytes written
//   - error: ErrInvalidOperation if temp is set for a fixed-size value,
//     ErrHeaderMismatch, ErrNotEnoughCapacity, or a serializer error
func (c *Codec[T]) WritePrepared(dst []byte, value T, ts *format.Timestamp, temp *buffers.RetainedMemory, slot *header.DataTypeHeader) (int, error) {
	h, err := c.headerFor(value)
	if err != nil {
		temp.Dispose()
		return -1, err
	}
	// The slot is only filled once the frame is written.
	var staged header.DataTypeHeader
	if slot != nil {
		staged = *slot
		if err := header.CheckSlot(&staged, h); err != nil {
			temp.Dispose()
			return -1, err
		}
	}

	n, err := c.writeFrame(dst, value, ts, temp, h)
	if err != nil {
		return -1, err
	}
	if slot != nil {
		*slot = staged
	}

	return n, nil
}

// writeFrame writes the frame of value with header h. It takes ownership of
// temp.
func (c *Codec[T]) writeFrame(dst []byte, value T, ts *format.Timestamp, temp *buffers.RetainedMemory, h header.DataTypeHeader) (int, error) {
	defer func() { temp.Dispose() }()

	h.VersionAndFlags.SetTimestamped(ts != nil)
	offset := prefixSize(ts != nil)

	if compress.IsFixedFrame(h) {
		if temp != nil {
			return -1, errors.Wrap(errs.ErrInvalidOperation, "fixed-size values take no temporary buffer")
		}

		return c.writeFixed(dst, value, ts, h, offset)
	}

	var payloadLen int
	if temp == nil {
		var err error
		if payloadLen, temp, err = c.payloadSizeOf(value); err != nil {
			return -1, err
		}
	} else {
		payloadLen = temp.Len()
	}
	encoded := c.method != format.CompressionNone && temp != nil

	total := offset + PayloadLengthSize + payloadLen
	if len(dst) < total {
		return -1, errors.Wrapf(errs.ErrNotEnoughCapacity, "frame needs %d bytes, have %d", total, len(dst))
	}
	body := dst[offset+PayloadLengthSize : total]
	if temp != nil {
		copy(body, temp.Bytes())
	} else {
		n, err := c.ser.Write(value, buffers.DirectBuffer(body))
		if err != nil {
			return -1, err
		}
		if n != payloadLen {
			panic(wrongSize("Write", payloadLen, n))
		}
	}

	if encoded {
		h.VersionAndFlags.SetCompressionMethod(c.method)
		rawLen, compressed, err := compress.PayloadRawLength(body)
		if err != nil {
			return -1, err
		}
		h.VersionAndFlags.SetShuffled(compressed && compress.WillShuffle(c.cfg, c.elemSize, rawLen))
	}
	c.putPrefix(dst, h, ts)
	le.PutUint32(dst[offset:], uint32(payloadLen))

	return total, nil
}

func (c *Codec[T]) writeFixed(dst []byte, value T, ts *format.Timestamp, h header.DataTypeHeader, offset int) (int, error) {
	size := h.FixedSize()
	total := offset + size
	if len(dst) < total {
		return -1, errors.Wrapf(errs.ErrNotEnoughCapacity, "frame needs %d bytes, have %d", total, len(dst))
	}
	n, err := c.ser.Write(value, buffers.DirectBuffer(dst[offset:total]))
	if err != nil {
		return -1, err
	}
	if n != size {
		panic(wrongSize("Write", size, n))
	}
	c.putPrefix(dst, h, ts)

	return total, nil
}

func (c *Codec[T]) putPrefix(dst []byte, h header.DataTypeHeader, ts *format.Timestamp) {
	h.Put(dst)
	if ts != nil {
		le.PutUint64(dst[header.Size:], uint64(*ts))
	}
}

// Append appends a frame of value to dst and returns the extended slice.
func (c *Codec[T]) Append(dst []byte, value T, ts *format.Timestamp) ([]byte, error) {
	size, temp, err := c.SizeOf(value, ts != nil)
	if err != nil {
		return dst, err
	}
	start := len(dst)
	dst = growTo(dst, start+size)
	n, err := c.WritePrepared(dst[start:], value, ts, temp, nil)
	if err != nil {
		return dst[:start], err
	}

	return dst[:start+n], nil
}

func growTo(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	grown := make([]byte, n, max(n, 2*cap(b)))
	copy(grown, b)

	return grown
}

// accepts reports whether frames with header h can be read as T.
func (c *Codec[T]) accepts(h header.DataTypeHeader) bool {
	if c.fixedArray != nil {
		shape := h.Shape()
		return shape.TypeEnum() == header.TupleTN &&
			shape.TEOFS1 == c.header.TEOFS1 &&
			shape.VersionAndFlags == c.header.VersionAndFlags
	}

	return h.SameShape(c.header)
}

// Read reads one frame from src.
//
// Returns:
//   - T: the value
//   - format.Timestamp: the frame timestamp, zero if absent
//   - int: bytes consumed, or -1 on failure
//   - error: ErrHeaderMismatch if the frame is not of type T,
//     ErrInvalidLength or ErrCorrupted for a malformed frame
func (c *Codec[T]) Read(src []byte) (T, format.Timestamp, int, error) {
	var zero T

	h, err := header.ParseDataTypeHeader(src)
	if err != nil {
		return zero, 0, -1, err
	}
	if !c.accepts(h) {
		return zero, 0, -1, errors.Wrapf(errs.ErrHeaderMismatch, "frame holds %s, codec reads %s", h, c.header)
	}
	info, err := compress.InspectFrame(src)
	if err != nil {
		return zero, 0, -1, err
	}

	payload := info.Body
	if !info.Fixed && h.VersionAndFlags.IsCompressed() {
		elemSize := 0
		if h.VersionAndFlags.IsShuffled() {
			if elemSize = compress.ShuffleElementSize(h); elemSize == 0 {
				return zero, 0, -1, errors.Wrapf(errs.ErrCorrupted, "shuffled frame of %s has no element size", h)
			}
		}
		raw := c.pool.Rent(info.RawLength)
		defer raw.Dispose()
		if _, err := compress.DecodePayload(payload, raw.Bytes(), h.VersionAndFlags.CompressionMethod(), elemSize); err != nil {
			return zero, 0, -1, err
		}
		payload = raw.Bytes()
	}

	v, n, err := c.ser.Read(buffers.DirectBuffer(payload))
	if err != nil {
		return zero, 0, -1, err
	}
	if n != len(payload) {
		return zero, 0, -1, errors.Wrapf(errs.ErrInvalidLength, "read %d of %d payload bytes", n, len(payload))
	}

	return v, info.Timestamp, info.Size, nil
}
