package format

type (
	// CompressionMethod is the 2-bit compression method code stored in a header.
	CompressionMethod uint8
	// SerializationFormat selects between binary and JSON payloads.
	SerializationFormat uint8
	// Timestamp is an optional int64 prefix of a frame, nanoseconds since the
	// Unix epoch by convention.
	Timestamp int64
)

const (
	CompressionNone CompressionMethod = 0x0 // CompressionNone represents no compression.
	CompressionZlib CompressionMethod = 0x1 // CompressionZlib represents zlib/deflate compression.
	CompressionLZ4  CompressionMethod = 0x2 // CompressionLZ4 represents LZ4 block compression.
	CompressionZstd CompressionMethod = 0x3 // CompressionZstd represents Zstandard compression.

	// CompressionMethodMask masks the 2 bits a method occupies in a header.
	CompressionMethodMask = 0x3
)

const (
	FormatBinary SerializationFormat = 0x0 // FormatBinary represents a binary payload.
	FormatJSON   SerializationFormat = 0x1 // FormatJSON represents a JSON payload.
)

// TimestampSize is the size of an encoded Timestamp in bytes.
const TimestampSize = 8

func (c CompressionMethod) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZlib:
		return "Zlib"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c fits in the 2-bit method code.
func (c CompressionMethod) IsValid() bool {
	return c <= CompressionZstd
}

func (f SerializationFormat) String() string {
	switch f {
	case FormatBinary:
		return "Binary"
	case FormatJSON:
		return "JSON"
	default:
		return "Unknown"
	}
}
