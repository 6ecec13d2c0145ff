// Package serialization writes and reads self-describing frames of Go values.
//
// A frame starts with the 4-byte header.DataTypeHeader describing the value's
// shape, followed by an optional 8-byte timestamp and the payload:
//
//	fixed-size binary:  [header][timestamp?][payload]
//	everything else:    [header][timestamp?][length int32][payload]
//
// # Serializers
//
// A Serializer[T] turns values into payload bytes. Codecs pick one per type:
//
//   - a serializer bound with Register, or passed to NewCodecWith
//   - the built-in serializer for fixed-size values (numbers, bool,
//     format.Timestamp, arrays and structs of them), strings, byte slices and
//     slices of fixed-size elements
//   - JSON for everything else
//
// Fixed-size structs of two or three fields map onto tuple headers, fixed
// arrays onto TupleTN; other fixed-size values are described by their size.
//
// # Writing
//
// Writing is split in two so callers can reserve space first:
//
//	codec, err := serialization.NewCodec[float64]()
//	size, temp, err := codec.SizeOf(value, false)
//	buf := make([]byte, size)
//	n, err := codec.WritePrepared(buf, value, nil, temp, &slot)
//
// SizeOf may hand back a temporary buffer with the prepared payload.
// WritePrepared always disposes it. Write and Append wrap both steps.
//
// A header slot shared by many frames is populated by the first write and
// checked by the following ones; a value with a different shape fails with
// errs.ErrHeaderMismatch before anything is written.
//
// # Compression
//
// With WithCompression, variable-size payloads are stored as the envelope of
// compress.EncodePayload and the header records the method. Arrays of
// fixed-size elements are also byte-shuffled when the compress.Config enables
// it. Fixed-size payloads are never compressed.
//
// # Errors
//
// Read returns -1 as the consumed count on any failure. A serializer that
// writes a different number of bytes than it reported is a broken
// implementation: the codec panics with an assertion failure caused by
// errs.ErrWrongSerializerImplementation.
package serialization
