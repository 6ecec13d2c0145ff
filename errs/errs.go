// Package errs defines the sentinel errors returned by the serialization,
// compression and block-tree packages.
//
// Callers match them with errors.Is; producers wrap them with additional
// context. Fatal contract violations are not represented here: they panic with
// an assertion failure instead.
package errs

import "github.com/cockroachdb/errors"

// Schema errors.
var (
	// ErrBadTypeEnum is returned when a type enum value is outside 0..126.
	ErrBadTypeEnum = errors.New("type enum value is out of range")
	// ErrFixedSizeOutOfRange is returned when an unknown fixed size is outside 1..128.
	ErrFixedSizeOutOfRange = errors.New("fixed size is out of range")
	// ErrHeaderMismatch is returned when a header slot already holds a different header.
	ErrHeaderMismatch = errors.New("data type header mismatch")
	// ErrInvalidHeaderSize is returned when fewer than 4 bytes are available for a header.
	ErrInvalidHeaderSize = errors.New("invalid data type header size")
)

// Capacity and framing errors.
var (
	// ErrNotEnoughCapacity is returned when a destination buffer is too small.
	ErrNotEnoughCapacity = errors.New("not enough capacity in destination")
	// ErrInvalidLength is returned when a length field is negative or exceeds the source.
	ErrInvalidLength = errors.New("invalid payload length")
	// ErrCorrupted is returned when a compressed frame cannot be decoded.
	ErrCorrupted = errors.New("corrupted compressed data")
)

// Usage errors.
var (
	// ErrInvalidOperation is returned when an operation is invalid for the value's shape.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrNotSupported is returned for unsupported compression methods or types.
	ErrNotSupported = errors.New("not supported")
	// ErrBigEndianUnsupported is returned on big-endian hosts.
	ErrBigEndianUnsupported = errors.New("big-endian platforms are not supported")
)

// Serializer contract errors. ErrWrongSerializerImplementation is used as the
// cause of an assertion failure and is never returned to callers.
var (
	ErrWrongSerializerImplementation = errors.New("serializer wrote a different size than it reported")
)

// Block-tree and series errors.
var (
	// ErrOutOfOrderKey is returned when an appended key is not greater than the last key.
	ErrOutOfOrderKey = errors.New("key is out of order")
	// ErrBusy is returned when an optimistic read exhausts its retry budget.
	ErrBusy = errors.New("series is busy, retry budget exhausted")
	// ErrDisposed is returned when a disposed block, cursor or series is used.
	ErrDisposed = errors.New("object is disposed")
	// ErrCapacityExceeded is returned when a block cannot grow past its maximum size.
	ErrCapacityExceeded = errors.New("block capacity exceeded")
)
