package serialization

import (
	"encoding/binary"
	"reflect"

	"github.com/Spreads/Spreads-sub007/buffers"
	"github.com/Spreads/Spreads-sub007/endian"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/cockroachdb/errors"
)

var le = endian.GetLittleEndianEngine()

// builtinVersion is the serializer version of every built-in serializer.
const builtinVersion = 1

// builtinSerializer returns the built-in serializer for a resolved shape.
func builtinSerializer[T any](s shape) Serializer[T] {
	switch s.kind {
	case kindRawFixed:
		return rawFixedSerializer[T]{size: s.size}
	case kindInt:
		return intSerializer[T]{}
	case kindUint:
		return uintSerializer[T]{}
	case kindString:
		return stringSerializer[T]{}
	case kindBytes:
		return bytesSerializer[T]{}
	case kindRawSlice:
		return rawSliceSerializer[T]{elemSize: s.size, typ: reflect.TypeFor[T]()}
	default:
		return newJSONSerializer[T]()
	}
}

type builtinBase struct{}

func (builtinBase) SerializerVersion() uint8 { return builtinVersion }
func (builtinBase) KnownTypeID() uint8       { return 0 }

func shortBuffer(need, have int) error {
	return errors.Wrapf(errs.ErrNotEnoughCapacity, "need %d bytes, have %d", need, have)
}

// rawFixedSerializer writes fixed-size values with encoding/binary: scalars,
// arrays and structs of exported fixed-size fields, packed and little-endian.
type rawFixedSerializer[T any] struct {
	builtinBase
	size int
}

func (s rawFixedSerializer[T]) FixedSize() int { return s.size }

func (s rawFixedSerializer[T]) SizeOf(T) (int, *buffers.RetainedMemory, error) {
	return s.size, nil, nil
}

func (s rawFixedSerializer[T]) Write(value T, dst buffers.DirectBuffer) (int, error) {
	if len(dst) < s.size {
		return -1, shortBuffer(s.size, len(dst))
	}

	return binary.Encode(dst, le, value)
}

func (s rawFixedSerializer[T]) Read(src buffers.DirectBuffer) (T, int, error) {
	var v T
	if len(src) < s.size {
		return v, -1, errors.Wrapf(errs.ErrInvalidLength, "fixed value needs %d bytes, have %d", s.size, len(src))
	}
	n, err := binary.Decode(src, le, &v)

	return v, n, err
}

// intSerializer writes int as int64.
type intSerializer[T any] struct{ builtinBase }

func (intSerializer[T]) FixedSize() int { return 8 }

func (intSerializer[T]) SizeOf(T) (int, *buffers.RetainedMemory, error) { return 8, nil, nil }

func (intSerializer[T]) Write(value T, dst buffers.DirectBuffer) (int, error) {
	if len(dst) < 8 {
		return -1, shortBuffer(8, len(dst))
	}
	dst.WriteInt64(0, reflect.ValueOf(value).Int())

	return 8, nil
}

func (intSerializer[T]) Read(src buffers.DirectBuffer) (T, int, error) {
	var v T
	if len(src) < 8 {
		return v, -1, errors.Wrapf(errs.ErrInvalidLength, "int needs 8 bytes, have %d", len(src))
	}
	reflect.ValueOf(&v).Elem().SetInt(src.ReadInt64(0))

	return v, 8, nil
}

// uintSerializer writes uint as uint64.
type uintSerializer[T any] struct{ builtinBase }

func (uintSerializer[T]) FixedSize() int { return 8 }

func (uintSerializer[T]) SizeOf(T) (int, *buffers.RetainedMemory, error) { return 8, nil, nil }

func (uintSerializer[T]) Write(value T, dst buffers.DirectBuffer) (int, error) {
	if len(dst) < 8 {
		return -1, shortBuffer(8, len(dst))
	}
	le.PutUint64(dst, reflect.ValueOf(value).Uint())

	return 8, nil
}

func (uintSerializer[T]) Read(src buffers.DirectBuffer) (T, int, error) {
	var v T
	if len(src) < 8 {
		return v, -1, errors.Wrapf(errs.ErrInvalidLength, "uint needs 8 bytes, have %d", len(src))
	}
	reflect.ValueOf(&v).Elem().SetUint(le.Uint64(src))

	return v, 8, nil
}

// stringSerializer writes the UTF-8 bytes of a string.
type stringSerializer[T any] struct{ builtinBase }

func (stringSerializer[T]) FixedSize() int { return -1 }

func (stringSerializer[T]) SizeOf(value T) (int, *buffers.RetainedMemory, error) {
	return len(asString(value)), nil, nil
}

func (stringSerializer[T]) Write(value T, dst buffers.DirectBuffer) (int, error) {
	s := asString(value)
	if len(dst) < len(s) {
		return -1, shortBuffer(len(s), len(dst))
	}

	return copy(dst, s), nil
}

func (stringSerializer[T]) Read(src buffers.DirectBuffer) (T, int, error) {
	var v T
	if p, ok := any(&v).(*string); ok {
		*p = string(src)
	} else {
		reflect.ValueOf(&v).Elem().SetString(string(src))
	}

	return v, len(src), nil
}

func asString[T any](value T) string {
	if s, ok := any(value).(string); ok {
		return s
	}

	return reflect.ValueOf(value).String()
}

// bytesSerializer writes a byte slice verbatim. Read copies, so values never
// alias pooled memory.
type bytesSerializer[T any] struct{ builtinBase }

func (bytesSerializer[T]) FixedSize() int { return -1 }

func (bytesSerializer[T]) SizeOf(value T) (int, *buffers.RetainedMemory, error) {
	return len(asBytes(value)), nil, nil
}

func (bytesSerializer[T]) Write(value T, dst buffers.DirectBuffer) (int, error) {
	b := asBytes(value)
	if len(dst) < len(b) {
		return -1, shortBuffer(len(b), len(dst))
	}

	return copy(dst, b), nil
}

func (bytesSerializer[T]) Read(src buffers.DirectBuffer) (T, int, error) {
	var v T
	b := append([]byte(nil), src...)
	if p, ok := any(&v).(*[]byte); ok {
		*p = b
	} else {
		reflect.ValueOf(&v).Elem().SetBytes(b)
	}

	return v, len(src), nil
}

func asBytes[T any](value T) []byte {
	if b, ok := any(value).([]byte); ok {
		return b
	}

	return reflect.ValueOf(value).Bytes()
}

// rawSliceSerializer writes a slice of fixed-size elements as a packed array.
type rawSliceSerializer[T any] struct {
	builtinBase
	elemSize int
	typ      reflect.Type
}

func (rawSliceSerializer[T]) FixedSize() int { return -1 }

func (s rawSliceSerializer[T]) SizeOf(value T) (int, *buffers.RetainedMemory, error) {
	return reflect.ValueOf(value).Len() * s.elemSize, nil, nil
}

func (s rawSliceSerializer[T]) Write(value T, dst buffers.DirectBuffer) (int, error) {
	size := reflect.ValueOf(value).Len() * s.elemSize
	if len(dst) < size {
		return -1, shortBuffer(size, len(dst))
	}
	if size == 0 {
		return 0, nil
	}

	return binary.Encode(dst, le, value)
}

func (s rawSliceSerializer[T]) Read(src buffers.DirectBuffer) (T, int, error) {
	var v T
	if len(src)%s.elemSize != 0 {
		return v, -1, errors.Wrapf(errs.ErrInvalidLength, "%d bytes is not a multiple of the %d byte element", len(src), s.elemSize)
	}
	count := len(src) / s.elemSize
	slice := reflect.MakeSlice(s.typ, count, count)
	if count > 0 {
		if _, err := binary.Decode(src, le, slice.Interface()); err != nil {
			return v, -1, err
		}
	}
	reflect.ValueOf(&v).Elem().Set(slice)

	return v, len(src), nil
}
