package header

import (
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/cockroachdb/errors"
)

// FixedSize returns the total byte size of the shape if it is fixed, or -1
// for anything variable-size or without enough static information.
func (h DataTypeHeader) FixedSize() int {
	if h.TEOFS.hasStaticSize() {
		return h.TEOFS.Size()
	}

	return h.fixedSizeComposite()
}

// fixedSizeComposite resolves the size of tuple shapes. Every case must stay
// explicit: a shape that is not listed here is treated as variable-size.
func (h DataTypeHeader) fixedSizeComposite() int {
	if h.TEOFS.hasStaticSize() {
		panic(errors.AssertionFailedf("%v: composite size requested for scalar header %s",
			errs.ErrInvalidOperation, h))
	}

	switch h.TypeEnum() {
	case TupleT2:
		return multiply(2, h.elementSize())
	case TupleT3:
		return multiply(3, h.elementSize())
	case TupleTN:
		count, _ := h.TupleTNCount()
		if count == 0 || !h.TEOFS1.hasStaticSize() {
			return -1
		}

		return multiply(count, h.TEOFS1.Size())
	case TupleN:
		size, _ := h.TupleNFixedSize()
		if size == 0 {
			return -1
		}

		return size
	case Tuple2:
		return sum(0, staticSize(h.TEOFS1), staticSize(h.TEOFS2))
	case Tuple3Byte:
		return sum(1, staticSize(h.TEOFS1), staticSize(h.TEOFS2))
	case Tuple3Long:
		return sum(8, staticSize(h.TEOFS1), staticSize(h.TEOFS2))
	case Array, Map, Series, Frame, Matrix:
		return -1
	case Binary, String, JSON:
		return -1
	case UserType:
		return -1
	default:
		return -1
	}
}

// elementSize returns the element size of a TupleT2/TupleT3 header. A
// composite element is resolved through the sub-header built from TEOFS1 and
// TEOFS2; only TupleT2 and TupleT3 elements can be described that way.
func (h DataTypeHeader) elementSize() int {
	if h.TEOFS1.hasStaticSize() {
		if h.TEOFS1.IsZero() {
			return -1
		}

		return h.TEOFS1.Size()
	}

	switch h.TEOFS1.TypeEnum() {
	case TupleT2, TupleT3:
		sub := h.SubHeader()
		if sub.TEOFS1.IsZero() || !sub.TEOFS1.hasStaticSize() {
			return -1
		}

		return sub.FixedSize()
	default:
		return -1
	}
}

// staticSize returns the size of a scalar or fixed-binary descriptor, -1 otherwise.
func staticSize(t TypeEnumOrFixedSize) int {
	if t.IsZero() || !t.hasStaticSize() {
		return -1
	}

	return t.Size()
}

func multiply(n, size int) int {
	if size <= 0 {
		return -1
	}

	return n * size
}

func sum(base int, sizes ...int) int {
	total := base
	for _, s := range sizes {
		if s <= 0 {
			return -1
		}
		total += s
	}

	return total
}
