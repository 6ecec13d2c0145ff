// Package compress provides the block codecs and the compression envelope of
// serialized frames.
//
// # Overview
//
// Compression is applied to the payload of a frame after serialization. The
// method is recorded in the 2-bit compression field of the frame's
// DataTypeHeader, so a reader never needs out-of-band configuration:
//   - None: payload stored verbatim
//   - Zlib: deflate with a zlib wrapper (klauspost/compress/zlib)
//   - LZ4: LZ4 block format, fast or HC (pierrec/lz4)
//   - Zstd: single Zstandard frame (klauspost/compress/zstd)
//
// # Codec Contract
//
// Every codec works on caller-owned memory and never allocates its output:
//
//	type Codec interface {
//	    Method() format.CompressionMethod
//	    CompressBlock(src, dst []byte, level int) int
//	    DecompressBlock(src, dst []byte) int
//	}
//
// A non-positive return means the block could not be produced in dst. On the
// compression side the caller then stores the payload raw; on the
// decompression side it is reported as ErrCorrupted.
//
// # Frames
//
// CompressWithHeader, DecompressWithHeader and InspectFrame operate on the
// frames written by the serialization codec:
//
//	fixed size:   [header:4][timestamp:8?][payload]
//	uncompressed: [header:4][timestamp:8?][length:4][payload]
//	compressed:   [header:4][timestamp:8?][length:4][rawLength:4][bytes]
//
// length counts the payload. A negative rawLength stores the payload
// verbatim. Fixed-size frames, frames with a payload below
// Config.CompressionLimit, and frames the codec cannot shrink are copied
// through:
//
//	cfg, _ := compress.NewConfig(compress.WithZstdLevel(3))
//	n, err := compress.CompressWithHeader(frame, dst, format.CompressionZstd, cfg)
//	if err != nil {
//	    return err
//	}
//	m, err := compress.DecompressWithHeader(dst[:n], raw)
//
// # Serialized Payloads
//
// EncodePayload and DecodePayload implement the payload-level envelope used
// by the serialization codec: [rawLength:4][bytes], where a negative raw
// length marks a payload stored verbatim because compression did not help.
//
// # Shuffling
//
// With Config.Shuffle set, arrays of fixed-size elements are byte-shuffled
// before compression and the header's shuffled flag is set. Grouping bytes of
// equal significance typically improves the ratio of numeric arrays by a
// large factor.
//
// # Metrics
//
// Config.Metrics receives per-method byte and fallback counters. Register
// them with a prometheus registry:
//
//	m := compress.NewMetrics("spreads")
//	prometheus.MustRegister(m.Collectors()...)
package compress
