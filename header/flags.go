package header

import "github.com/Spreads/Spreads-sub007/format"

// Bit layout of VersionAndFlags.
const (
	// CompressionMask covers bits 0-1, the compression method code.
	CompressionMask = 0x03
	// JSONMask is bit 2: 0 means binary payload, 1 means JSON payload.
	JSONMask = 0x04
	// TimestampedMask is bit 3: the frame carries an 8-byte timestamp after the header.
	TimestampedMask = 0x08
	// ShuffledMask is bit 4: the payload was byte-shuffled before compression.
	ShuffledMask = 0x10
	// VersionShift is the offset of the 3-bit converter version in bits 5-7.
	VersionShift = 5
	// MaxConverterVersion is the largest converter version that fits in 3 bits.
	MaxConverterVersion = 0x07
)

// VersionAndFlags is the first byte of a DataTypeHeader.
type VersionAndFlags uint8

// CompressionMethod returns the compression method from bits 0-1.
func (f VersionAndFlags) CompressionMethod() format.CompressionMethod {
	return format.CompressionMethod(f & CompressionMask)
}

// SetCompressionMethod sets the compression method in bits 0-1.
func (f *VersionAndFlags) SetCompressionMethod(m format.CompressionMethod) {
	*f &^= CompressionMask
	*f |= VersionAndFlags(m) & CompressionMask
}

// IsCompressed reports whether a compression method other than None is set.
func (f VersionAndFlags) IsCompressed() bool {
	return f&CompressionMask != 0
}

// Format returns the serialization format from bit 2.
func (f VersionAndFlags) Format() format.SerializationFormat {
	if f&JSONMask != 0 {
		return format.FormatJSON
	}

	return format.FormatBinary
}

// IsBinary reports whether the payload is binary.
func (f VersionAndFlags) IsBinary() bool {
	return f&JSONMask == 0
}

// SetFormat sets the serialization format in bit 2.
func (f *VersionAndFlags) SetFormat(sf format.SerializationFormat) {
	if sf == format.FormatJSON {
		*f |= JSONMask
	} else {
		*f &^= JSONMask
	}
}

// IsTimestamped reports whether the frame carries a timestamp.
func (f VersionAndFlags) IsTimestamped() bool {
	return f&TimestampedMask != 0
}

// SetTimestamped sets or clears the timestamped flag.
func (f *VersionAndFlags) SetTimestamped(enabled bool) {
	if enabled {
		*f |= TimestampedMask
	} else {
		*f &^= TimestampedMask
	}
}

// IsShuffled reports whether the payload was byte-shuffled.
func (f VersionAndFlags) IsShuffled() bool {
	return f&ShuffledMask != 0
}

// SetShuffled sets or clears the shuffled flag.
func (f *VersionAndFlags) SetShuffled(enabled bool) {
	if enabled {
		*f |= ShuffledMask
	} else {
		*f &^= ShuffledMask
	}
}

// ConverterVersion returns the converter version from bits 5-7.
func (f VersionAndFlags) ConverterVersion() uint8 {
	return uint8(f) >> VersionShift
}

// SetConverterVersion sets bits 5-7. Versions above MaxConverterVersion are truncated.
func (f *VersionAndFlags) SetConverterVersion(v uint8) {
	*f &^= MaxConverterVersion << VersionShift
	*f |= VersionAndFlags(v&MaxConverterVersion) << VersionShift
}

// shapeMask covers the bits that describe the payload shape rather than the
// framing of one particular write.
const shapeMask = JSONMask | (MaxConverterVersion << VersionShift)
