// Package spreads stores and serializes sorted series of values.
//
// A value is written as a frame: a 4-byte data type header describing its
// shape, an optional timestamp, and the payload, which may be compressed
// with zlib, LZ4 or Zstd. Rows of a series live in an append-only block tree
// that one writer and many lock-free readers share.
//
// # Basic Usage
//
// Serializing values:
//
//	codec, _ := spreads.NewCodec[float64](spreads.WithCompression(spreads.CompressionZstd))
//	ts := spreads.Timestamp(time.Now().UnixNano())
//	frame, _ := codec.Append(nil, 42.5, &ts)
//	value, ts, n, _ := codec.Read(frame)
//
// Building a series and persisting it as frames:
//
//	s, _ := spreads.NewSeries[spreads.Timestamp, float64]()
//	_ = s.Append(ts, 42.5)
//	data, _ := spreads.AppendSeries(nil, s, codec)
//
// # Package Structure
//
// This package wraps the most common entry points. The serialization,
// series, blocktree, compress and header packages give full control.
package spreads

import (
	"cmp"

	"github.com/Spreads/Spreads-sub007/compress"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/internal/base"
	"github.com/Spreads/Spreads-sub007/serialization"
	"github.com/Spreads/Spreads-sub007/series"
)

// Timestamp is the optional int64 prefix of a frame.
type Timestamp = format.Timestamp

// CompressionMethod selects the codec of a compressed payload.
type CompressionMethod = format.CompressionMethod

// Compression methods.
const (
	CompressionNone = format.CompressionNone
	CompressionZlib = format.CompressionZlib
	CompressionLZ4  = format.CompressionLZ4
	CompressionZstd = format.CompressionZstd
)

// Logger receives the diagnostics of codecs and series.
type Logger = base.Logger

// WithCompression sets the compression method of a codec.
func WithCompression(method CompressionMethod) serialization.Option {
	return serialization.WithCompression(method)
}

// NewCodec returns a codec for T that uses the serializer registered for T,
// a builtin one, or JSON.
func NewCodec[T any](opts ...serialization.Option) (*serialization.Codec[T], error) {
	return serialization.NewCodec[T](opts...)
}

// NewCompressionConfig returns a compression configuration with opts applied
// over the defaults.
func NewCompressionConfig(opts ...compress.Option) (*compress.Config, error) {
	return compress.NewConfig(opts...)
}

// NewSeries returns an empty series ordered by the natural order of K.
func NewSeries[K cmp.Ordered, V any](opts ...series.Option) (*series.Series[K, V], error) {
	return series.New[K, V](opts...)
}

// AppendSeries appends every row of s to dst as one frame per row, with the
// row key as the frame timestamp.
func AppendSeries[V any](dst []byte, s *series.Series[Timestamp, V], codec *serialization.Codec[V]) ([]byte, error) {
	c := s.NewCursor()
	defer c.Close()

	for {
		ok, err := c.MoveNext()
		if err != nil || !ok {
			return dst, err
		}
		ts := c.Key()
		if dst, err = codec.Append(dst, c.Value(), &ts); err != nil {
			return dst, err
		}
	}
}

// ReadSeries appends the frames in src to s, keyed by their timestamps, and
// returns the number of rows added.
func ReadSeries[V any](src []byte, s *series.Series[Timestamp, V], codec *serialization.Codec[V]) (int, error) {
	rows := 0
	for len(src) > 0 {
		value, ts, n, err := codec.Read(src)
		if err != nil {
			return rows, err
		}
		if err := s.Append(ts, value); err != nil {
			return rows, err
		}
		src = src[n:]
		rows++
	}

	return rows, nil
}
