package header

import (
	"fmt"

	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/cockroachdb/errors"
)

// fixedSizeFlag marks a descriptor that stores (size-1) in its low 7 bits.
const fixedSizeFlag = 0x80

// MaxUnknownFixedSize is the largest size an unknown fixed-size descriptor can encode.
const MaxUnknownFixedSize = 128

// TypeEnumOrFixedSize (TEOFS) is a 1-byte descriptor holding either a known
// TypeEnum (high bit clear) or the size of an unknown fixed-size type
// (high bit set, low 7 bits = size-1).
type TypeEnumOrFixedSize uint8

// FromKnownType returns the descriptor for a known type enum.
//
// Returns:
//   - error: ErrBadTypeEnum if e >= 127
func FromKnownType(e TypeEnum) (TypeEnumOrFixedSize, error) {
	if e > MaxTypeEnum {
		return 0, errors.Wrapf(errs.ErrBadTypeEnum, "type enum %d", uint8(e))
	}

	return TypeEnumOrFixedSize(e), nil
}

// FromUnknownFixedSize returns the descriptor for an unknown type of the given size.
//
// Returns:
//   - error: ErrFixedSizeOutOfRange if size is not in 1..128
func FromUnknownFixedSize(size int) (TypeEnumOrFixedSize, error) {
	if size < 1 || size > MaxUnknownFixedSize {
		return 0, errors.Wrapf(errs.ErrFixedSizeOutOfRange, "size %d", size)
	}

	return TypeEnumOrFixedSize(fixedSizeFlag | uint8(size-1)), nil
}

// MustKnownType is like FromKnownType but panics on error. It is intended for
// package-level declarations with constant enums.
func MustKnownType(e TypeEnum) TypeEnumOrFixedSize {
	t, err := FromKnownType(e)
	if err != nil {
		panic(err)
	}

	return t
}

// MustUnknownFixedSize is like FromUnknownFixedSize but panics on error.
func MustUnknownFixedSize(size int) TypeEnumOrFixedSize {
	t, err := FromUnknownFixedSize(size)
	if err != nil {
		panic(err)
	}

	return t
}

// IsFixedBinary reports whether the descriptor encodes an unknown fixed size.
func (t TypeEnumOrFixedSize) IsFixedBinary() bool {
	return t&fixedSizeFlag != 0
}

// IsZero reports whether t is the default descriptor.
func (t TypeEnumOrFixedSize) IsZero() bool {
	return t == 0
}

// TypeEnum returns the decoded enum, or FixedBinary when the descriptor
// encodes a size.
func (t TypeEnumOrFixedSize) TypeEnum() TypeEnum {
	if t.IsFixedBinary() {
		return FixedBinary
	}

	return TypeEnum(t)
}

// Size returns the fixed byte size described by t, or -1 for variable-size
// and container types.
func (t TypeEnumOrFixedSize) Size() int {
	if t.IsFixedBinary() {
		return int(t&^fixedSizeFlag) + 1
	}

	return TypeEnum(t).Size()
}

// hasStaticSize reports whether Size alone fully describes t, i.e. t is a
// scalar or an unknown fixed-size type rather than the head of a composite.
func (t TypeEnumOrFixedSize) hasStaticSize() bool {
	return t.IsFixedBinary() || TypeEnum(t) <= MaxScalar
}

func (t TypeEnumOrFixedSize) String() string {
	if t.IsFixedBinary() {
		return fmt.Sprintf("FixedBinary(%d)", t.Size())
	}

	return TypeEnum(t).String()
}
