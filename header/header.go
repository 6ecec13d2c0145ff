// Package header implements the 4-byte DataTypeHeader that prefixes every
// serialized frame.
//
// # Wire Layout
//
//	byte 0: VersionAndFlags (compression, JSON, timestamped, shuffled, version)
//	byte 1: TEOFS   - the shape's TypeEnum or an unknown fixed size
//	byte 2: TEOFS1  - first sub-descriptor, element/key type or raw payload
//	byte 3: TEOFS2  - second sub-descriptor, value type or raw payload
//
// What TEOFS1 and TEOFS2 mean depends on TEOFS. For TupleTN the TEOFS2 byte is
// an element count, for TupleN both bytes hold a uint16 fixed size, and for
// UserType TEOFS1 holds the known type id. The accessors below check the tag
// before decoding those payloads.
//
// Two headers are equal iff all four bytes are equal.
package header

import (
	"fmt"

	"github.com/Spreads/Spreads-sub007/endian"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/cockroachdb/errors"
)

// Size is the encoded size of a DataTypeHeader in bytes.
const Size = 4

// MaxTupleNFixedSize is the largest total size a TupleN header can describe.
const MaxTupleNFixedSize = 0xFFFF

// DataTypeHeader describes the shape of a serialized value.
type DataTypeHeader struct {
	VersionAndFlags VersionAndFlags
	TEOFS           TypeEnumOrFixedSize
	TEOFS1          TypeEnumOrFixedSize
	TEOFS2          TypeEnumOrFixedSize
}

// Scalar returns the header of a scalar or variable-size leaf type such as
// Int64, String or Binary.
func Scalar(t TypeEnumOrFixedSize) DataTypeHeader {
	return DataTypeHeader{TEOFS: t}
}

// NewTupleT2 returns the header of a pair of elem values.
func NewTupleT2(elem TypeEnumOrFixedSize) DataTypeHeader {
	return DataTypeHeader{TEOFS: TypeEnumOrFixedSize(TupleT2), TEOFS1: elem}
}

// NewTupleT3 returns the header of a triple of elem values.
func NewTupleT3(elem TypeEnumOrFixedSize) DataTypeHeader {
	return DataTypeHeader{TEOFS: TypeEnumOrFixedSize(TupleT3), TEOFS1: elem}
}

// NewNestedTuple returns a TupleT2 or TupleT3 header whose element is itself
// a TupleT2 or TupleT3 of inner values.
func NewNestedTuple(outer, inner TypeEnum, innerElem TypeEnumOrFixedSize) (DataTypeHeader, error) {
	if (outer != TupleT2 && outer != TupleT3) || (inner != TupleT2 && inner != TupleT3) {
		return DataTypeHeader{}, errors.Wrapf(errs.ErrNotSupported, "nested tuple %s of %s", outer, inner)
	}

	return DataTypeHeader{
		TEOFS:  TypeEnumOrFixedSize(outer),
		TEOFS1: TypeEnumOrFixedSize(inner),
		TEOFS2: innerElem,
	}, nil
}

// NewTupleTN returns the header of count values of type elem. A zero count
// means the count is only known per value and must be patched before writing.
func NewTupleTN(elem TypeEnumOrFixedSize, count uint8) DataTypeHeader {
	return DataTypeHeader{TEOFS: TypeEnumOrFixedSize(TupleTN), TEOFS1: elem, TEOFS2: TypeEnumOrFixedSize(count)}
}

// NewTupleN returns the header of a heterogeneous tuple with a total fixed size.
//
// Returns:
//   - error: ErrFixedSizeOutOfRange if fixedSize is not in 1..65535
func NewTupleN(fixedSize int) (DataTypeHeader, error) {
	if fixedSize < 1 || fixedSize > MaxTupleNFixedSize {
		return DataTypeHeader{}, errors.Wrapf(errs.ErrFixedSizeOutOfRange, "tuple size %d", fixedSize)
	}

	return DataTypeHeader{
		TEOFS:  TypeEnumOrFixedSize(TupleN),
		TEOFS1: TypeEnumOrFixedSize(uint8(fixedSize)),
		TEOFS2: TypeEnumOrFixedSize(uint8(fixedSize >> 8)),
	}, nil
}

// NewTuple2 returns the header of a pair of differently typed values.
func NewTuple2(first, second TypeEnumOrFixedSize) DataTypeHeader {
	return DataTypeHeader{TEOFS: TypeEnumOrFixedSize(Tuple2), TEOFS1: first, TEOFS2: second}
}

// NewTuple3Byte returns the header of (uint8, first, second).
func NewTuple3Byte(first, second TypeEnumOrFixedSize) DataTypeHeader {
	return DataTypeHeader{TEOFS: TypeEnumOrFixedSize(Tuple3Byte), TEOFS1: first, TEOFS2: second}
}

// NewTuple3Long returns the header of (int64, first, second).
func NewTuple3Long(first, second TypeEnumOrFixedSize) DataTypeHeader {
	return DataTypeHeader{TEOFS: TypeEnumOrFixedSize(Tuple3Long), TEOFS1: first, TEOFS2: second}
}

// NewContainer returns the header of an Array, Map, Series, Frame or Matrix.
// Arrays and matrices leave second unset.
func NewContainer(kind TypeEnum, first, second TypeEnumOrFixedSize) (DataTypeHeader, error) {
	switch kind {
	case Array, Map, Series, Frame, Matrix:
		return DataTypeHeader{TEOFS: TypeEnumOrFixedSize(kind), TEOFS1: first, TEOFS2: second}, nil
	default:
		return DataTypeHeader{}, errors.Wrapf(errs.ErrNotSupported, "%s is not a container", kind)
	}
}

// NewUserType returns the header of a type with a custom serializer.
//
// Returns:
//   - error: ErrBadTypeEnum if id is not in 1..127
func NewUserType(id uint8) (DataTypeHeader, error) {
	if id == 0 || id > 127 {
		return DataTypeHeader{}, errors.Wrapf(errs.ErrBadTypeEnum, "known type id %d", id)
	}

	return DataTypeHeader{TEOFS: TypeEnumOrFixedSize(UserType), TEOFS1: TypeEnumOrFixedSize(id)}, nil
}

// TypeEnum returns the enum of the top-level descriptor.
func (h DataTypeHeader) TypeEnum() TypeEnum {
	return h.TEOFS.TypeEnum()
}

// IsScalar reports whether TEOFS1 is the default descriptor.
func (h DataTypeHeader) IsScalar() bool {
	return h.TEOFS1.IsZero()
}

// IsZero reports whether the header is unset.
func (h DataTypeHeader) IsZero() bool {
	return h.Uint32() == 0
}

// IsBinary reports whether the payload is binary.
func (h DataTypeHeader) IsBinary() bool {
	return h.VersionAndFlags.IsBinary()
}

// TupleTNCount returns the element count of a TupleTN header.
func (h DataTypeHeader) TupleTNCount() (int, bool) {
	if h.TypeEnum() != TupleTN {
		return 0, false
	}

	return int(uint8(h.TEOFS2)), true
}

// WithTupleTNCount returns a copy of a TupleTN header with its count replaced.
func (h DataTypeHeader) WithTupleTNCount(count int) (DataTypeHeader, error) {
	if h.TypeEnum() != TupleTN {
		return h, errors.Wrapf(errs.ErrInvalidOperation, "%s header has no element count", h.TypeEnum())
	}
	if count < 1 || count > 0xFF {
		return h, errors.Wrapf(errs.ErrFixedSizeOutOfRange, "tuple count %d", count)
	}
	h.TEOFS2 = TypeEnumOrFixedSize(uint8(count))

	return h, nil
}

// TupleNFixedSize returns the total size stored in a TupleN header.
func (h DataTypeHeader) TupleNFixedSize() (int, bool) {
	if h.TypeEnum() != TupleN {
		return 0, false
	}

	return int(uint16(h.TEOFS1) | uint16(h.TEOFS2)<<8), true
}

// UserTypeID returns the known type id of a UserType header.
func (h DataTypeHeader) UserTypeID() (uint8, bool) {
	if h.TypeEnum() != UserType {
		return 0, false
	}

	return uint8(h.TEOFS1), true
}

// SubHeader returns the header formed by shifting TEOFS1 and TEOFS2 one slot
// to the left. It describes the element of a nested tuple.
func (h DataTypeHeader) SubHeader() DataTypeHeader {
	return DataTypeHeader{TEOFS: h.TEOFS1, TEOFS1: h.TEOFS2}
}

// Uint32 returns the 4 header bytes as a little-endian integer.
func (h DataTypeHeader) Uint32() uint32 {
	return uint32(h.VersionAndFlags) | uint32(h.TEOFS)<<8 | uint32(h.TEOFS1)<<16 | uint32(h.TEOFS2)<<24
}

// FromUint32 decodes a header from its little-endian integer form.
func FromUint32(v uint32) DataTypeHeader {
	return DataTypeHeader{
		VersionAndFlags: VersionAndFlags(v),
		TEOFS:           TypeEnumOrFixedSize(v >> 8),
		TEOFS1:          TypeEnumOrFixedSize(v >> 16),
		TEOFS2:          TypeEnumOrFixedSize(v >> 24),
	}
}

// Equal reports whether both headers have identical bytes.
func (h DataTypeHeader) Equal(other DataTypeHeader) bool {
	return h.Uint32() == other.Uint32()
}

// Shape returns h with the compression, timestamp and shuffle flags cleared.
// These flags describe one particular frame rather than the payload type.
func (h DataTypeHeader) Shape() DataTypeHeader {
	h.VersionAndFlags &= shapeMask
	return h
}

// SameShape reports whether both headers describe the same payload shape,
// ignoring the compression, timestamp and shuffle flags of a single frame.
func (h DataTypeHeader) SameShape(other DataTypeHeader) bool {
	return h.Shape().Equal(other.Shape())
}

// Put writes the header into the first 4 bytes of dst.
func (h DataTypeHeader) Put(dst []byte) {
	endian.GetLittleEndianEngine().PutUint32(dst[:Size], h.Uint32())
}

// Bytes serializes the header into a new 4-byte slice.
func (h DataTypeHeader) Bytes() []byte {
	b := make([]byte, Size)
	h.Put(b)

	return b
}

// Parse parses the header from a byte slice.
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is shorter than 4 bytes,
//     ErrBadTypeEnum if TEOFS holds the reserved value 127
func (h *DataTypeHeader) Parse(data []byte) error {
	if len(data) < Size {
		return errs.ErrInvalidHeaderSize
	}

	parsed := FromUint32(endian.GetLittleEndianEngine().Uint32(data[:Size]))
	if parsed.TEOFS == TypeEnumOrFixedSize(FixedBinary) {
		return errors.Wrap(errs.ErrBadTypeEnum, "reserved type enum in header")
	}
	*h = parsed

	return nil
}

// ParseDataTypeHeader parses a DataTypeHeader from a byte slice.
func ParseDataTypeHeader(data []byte) (DataTypeHeader, error) {
	var h DataTypeHeader
	if err := h.Parse(data); err != nil {
		return DataTypeHeader{}, err
	}

	return h, nil
}

// CheckSlot validates h against a caller-owned header slot. An unset slot is
// populated with h; a populated slot must be equal to h.
//
// Returns:
//   - error: ErrHeaderMismatch if the slot holds a different header
func CheckSlot(slot *DataTypeHeader, h DataTypeHeader) error {
	if slot == nil {
		return nil
	}
	if slot.IsZero() {
		*slot = h
		return nil
	}
	if !slot.Equal(h) {
		return errors.Wrapf(errs.ErrHeaderMismatch, "slot holds %s, value has %s", *slot, h)
	}

	return nil
}

func (h DataTypeHeader) String() string {
	var shape string
	switch h.TypeEnum() {
	case TupleTN:
		n, _ := h.TupleTNCount()
		shape = fmt.Sprintf("TupleTN(%s x %d)", h.TEOFS1, n)
	case TupleN:
		n, _ := h.TupleNFixedSize()
		shape = fmt.Sprintf("TupleN(%d bytes)", n)
	case UserType:
		id, _ := h.UserTypeID()
		shape = fmt.Sprintf("UserType(%d)", id)
	default:
		if h.IsScalar() {
			shape = h.TEOFS.String()
		} else {
			shape = fmt.Sprintf("%s(%s, %s)", h.TEOFS, h.TEOFS1, h.TEOFS2)
		}
	}

	return fmt.Sprintf("%s{format=%s compression=%s ts=%t shuffled=%t v%d}",
		shape, h.VersionAndFlags.Format(), h.VersionAndFlags.CompressionMethod(),
		h.VersionAndFlags.IsTimestamped(), h.VersionAndFlags.IsShuffled(),
		h.VersionAndFlags.ConverterVersion())
}
