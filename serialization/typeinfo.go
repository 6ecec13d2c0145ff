package serialization

import (
	"encoding/binary"
	"reflect"
	"sync"

	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/header"
)

// shapeKind selects the built-in serializer of a Go type.
type shapeKind uint8

const (
	kindJSON shapeKind = iota
	kindRawFixed
	kindInt
	kindUint
	kindString
	kindBytes
	kindRawSlice
)

// shape is the resolved wire description of a Go type.
type shape struct {
	kind   shapeKind
	header header.DataTypeHeader
	// size is the payload size of kindRawFixed values and the element size of
	// kindRawSlice values.
	size int
}

var (
	shapeCache    sync.Map // reflect.Type -> shape
	timestampType = reflect.TypeFor[format.Timestamp]()
)

func shapeOf(t reflect.Type) shape {
	if s, ok := shapeCache.Load(t); ok {
		return s.(shape)
	}
	s := resolveShape(t)
	shapeCache.Store(t, s)

	return s
}

func resolveShape(t reflect.Type) shape {
	switch t.Kind() {
	case reflect.Int:
		return shape{kind: kindInt, header: scalarHeader(header.Int64), size: 8}
	case reflect.Uint:
		return shape{kind: kindUint, header: scalarHeader(header.UInt64), size: 8}
	case reflect.String:
		return shape{kind: kindString, header: scalarHeader(header.String)}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return shape{kind: kindBytes, header: scalarHeader(header.Binary)}
		}
		if elem, size, ok := fixedShape(t.Elem()); ok {
			desc, ok := descriptorOf(elem, size)
			if ok {
				h, err := header.NewContainer(header.Array, desc, 0)
				if err == nil {
					return shape{kind: kindRawSlice, header: h, size: size}
				}
			}
		}
	default:
		if h, size, ok := fixedShape(t); ok {
			return shape{kind: kindRawFixed, header: h, size: size}
		}
	}

	return jsonShape
}

var jsonShape = func() shape {
	h := scalarHeader(header.JSON)
	h.VersionAndFlags.SetFormat(format.FormatJSON)

	return shape{kind: kindJSON, header: h}
}()

func scalarHeader(e header.TypeEnum) header.DataTypeHeader {
	return header.Scalar(header.MustKnownType(e))
}

// scalarEnum maps fixed-width Go kinds to their scalar type enum.
func scalarEnum(t reflect.Type) (header.TypeEnum, bool) {
	if t == timestampType {
		return header.Timestamp, true
	}

	switch t.Kind() {
	case reflect.Bool:
		return header.Bool, true
	case reflect.Int8:
		return header.Int8, true
	case reflect.Int16:
		return header.Int16, true
	case reflect.Int32:
		return header.Int32, true
	case reflect.Int64:
		return header.Int64, true
	case reflect.Uint8:
		return header.UInt8, true
	case reflect.Uint16:
		return header.UInt16, true
	case reflect.Uint32:
		return header.UInt32, true
	case reflect.Uint64:
		return header.UInt64, true
	case reflect.Float32:
		return header.Float32, true
	case reflect.Float64:
		return header.Float64, true
	case reflect.Complex64:
		return header.Complex64, true
	case reflect.Complex128:
		return header.Complex128, true
	default:
		return header.None, false
	}
}

// isRawFixed reports whether encoding/binary can encode and decode t. Struct
// fields must be exported or blank so that decoding can set them.
func isRawFixed(t reflect.Type) bool {
	if _, ok := scalarEnum(t); ok {
		return true
	}

	switch t.Kind() {
	case reflect.Array:
		return t.Len() > 0 && isRawFixed(t.Elem())
	case reflect.Struct:
		if t.NumField() == 0 {
			return false
		}
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() && f.Name != "_" {
				return false
			}
			if !isRawFixed(f.Type) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// fixedShape resolves the header and packed size of a fixed-size type.
func fixedShape(t reflect.Type) (header.DataTypeHeader, int, bool) {
	if e, ok := scalarEnum(t); ok {
		return scalarHeader(e), e.Size(), true
	}
	if !isRawFixed(t) {
		return header.DataTypeHeader{}, 0, false
	}
	size := binary.Size(reflect.New(t).Elem().Interface())
	if size <= 0 {
		return header.DataTypeHeader{}, 0, false
	}

	var h header.DataTypeHeader
	switch t.Kind() {
	case reflect.Array:
		h = arrayHeader(t)
	case reflect.Struct:
		h = tupleHeader(t)
	}
	if h.IsZero() || h.FixedSize() != size {
		h = opaqueFixedHeader(size)
	}

	return h, size, !h.IsZero()
}

// opaqueFixedHeader describes a fixed-size value without element information.
func opaqueFixedHeader(size int) header.DataTypeHeader {
	if desc, err := header.FromUnknownFixedSize(size); err == nil {
		return header.Scalar(desc)
	}
	if h, err := header.NewTupleN(size); err == nil {
		return h
	}

	return header.DataTypeHeader{}
}

// descriptorOf returns a single descriptor for an element header: the header
// itself when it is a one-slot scalar, or an unknown fixed size.
func descriptorOf(h header.DataTypeHeader, size int) (header.TypeEnumOrFixedSize, bool) {
	if h.IsScalar() && h.TEOFS.Size() > 0 {
		return h.TEOFS, true
	}
	desc, err := header.FromUnknownFixedSize(size)

	return desc, err == nil
}

func arrayHeader(t reflect.Type) header.DataTypeHeader {
	elem, size, ok := fixedShape(t.Elem())
	if !ok || t.Len() > 255 {
		return header.DataTypeHeader{}
	}
	desc, ok := descriptorOf(elem, size)
	if !ok {
		return header.DataTypeHeader{}
	}

	return header.NewTupleTN(desc, uint8(t.Len()))
}

// tupleHeader maps structs of two or three fields onto the tuple shapes.
// Anything else is described by its size only.
func tupleHeader(t reflect.Type) header.DataTypeHeader {
	n := t.NumField()
	if n != 2 && n != 3 {
		return header.DataTypeHeader{}
	}

	fields := make([]header.DataTypeHeader, n)
	same := true
	for i := range n {
		h, _, ok := fixedShape(t.Field(i).Type)
		if !ok {
			return header.DataTypeHeader{}
		}
		fields[i] = h
		same = same && t.Field(i).Type == t.Field(0).Type
	}
	scalar := func(h header.DataTypeHeader) bool {
		return h.IsScalar() && h.TEOFS.Size() > 0
	}
	outer := header.TupleT2
	if n == 3 {
		outer = header.TupleT3
	}

	switch first := fields[0]; {
	case same && scalar(first):
		if n == 2 {
			return header.NewTupleT2(first.TEOFS)
		}

		return header.NewTupleT3(first.TEOFS)
	case same && (first.TypeEnum() == header.TupleT2 || first.TypeEnum() == header.TupleT3) && first.TEOFS2.IsZero():
		h, err := header.NewNestedTuple(outer, first.TypeEnum(), first.TEOFS1)
		if err != nil {
			return header.DataTypeHeader{}
		}

		return h
	case n == 2 && scalar(fields[0]) && scalar(fields[1]):
		return header.NewTuple2(fields[0].TEOFS, fields[1].TEOFS)
	case n == 3 && scalar(fields[1]) && scalar(fields[2]):
		switch t.Field(0).Type.Kind() {
		case reflect.Uint8:
			return header.NewTuple3Byte(fields[1].TEOFS, fields[2].TEOFS)
		case reflect.Int64:
			return header.NewTuple3Long(fields[1].TEOFS, fields[2].TEOFS)
		}
	}

	return header.DataTypeHeader{}
}
