package header

import "strconv"

// TypeEnum identifies the shape of a serialized value. Values 0..63 are
// scalars, 64..126 composite or variable-size shapes, and 127 is a virtual
// marker for a type known only by its fixed size.
type TypeEnum uint8

const (
	None TypeEnum = 0

	Int8   TypeEnum = 1
	Int16  TypeEnum = 2
	Int32  TypeEnum = 3
	Int64  TypeEnum = 4
	Int128 TypeEnum = 5

	UInt8   TypeEnum = 6
	UInt16  TypeEnum = 7
	UInt32  TypeEnum = 8
	UInt64  TypeEnum = 9
	UInt128 TypeEnum = 10

	Float16  TypeEnum = 11
	Float32  TypeEnum = 12
	Float64  TypeEnum = 13
	Float128 TypeEnum = 14

	Decimal32    TypeEnum = 15
	Decimal64    TypeEnum = 16
	Decimal128   TypeEnum = 17
	Decimal      TypeEnum = 18
	SmallDecimal TypeEnum = 19

	Bool      TypeEnum = 20
	Utf16Char TypeEnum = 21
	UUID      TypeEnum = 22
	DateTime  TypeEnum = 23
	Timestamp TypeEnum = 24

	Symbol    TypeEnum = 25
	Symbol32  TypeEnum = 26
	Symbol64  TypeEnum = 27
	Symbol128 TypeEnum = 28
	Symbol256 TypeEnum = 29

	Complex64  TypeEnum = 30
	Complex128 TypeEnum = 31

	// MaxScalar is the last enum value of the scalar range.
	MaxScalar TypeEnum = 63

	// TupleT2 is a pair of values of the TEOFS1 type.
	TupleT2 TypeEnum = 64
	// TupleT3 is a triple of values of the TEOFS1 type.
	TupleT3 TypeEnum = 65
	// TupleTN is N values of the TEOFS1 type, N stored in the TEOFS2 byte.
	TupleTN TypeEnum = 66
	// TupleN is a heterogeneous tuple whose total fixed size is stored as
	// a little-endian uint16 in the TEOFS1 and TEOFS2 bytes.
	TupleN TypeEnum = 67
	// Tuple2 is a pair of values of the TEOFS1 and TEOFS2 types.
	Tuple2 TypeEnum = 68
	// Tuple3Byte is (uint8, TEOFS1, TEOFS2).
	Tuple3Byte TypeEnum = 69
	// Tuple3Long is (int64, TEOFS1, TEOFS2).
	Tuple3Long TypeEnum = 70

	Array  TypeEnum = 80
	Map    TypeEnum = 81
	Series TypeEnum = 82
	Frame  TypeEnum = 83
	Matrix TypeEnum = 84

	Binary TypeEnum = 100
	String TypeEnum = 101
	JSON   TypeEnum = 102

	// UserType is a type with a custom serializer; TEOFS1 holds its known type id.
	UserType TypeEnum = 120

	// MaxTypeEnum is the largest enum that can be stored in a descriptor.
	MaxTypeEnum TypeEnum = 126
	// FixedBinary is the virtual enum reported by descriptors that encode a fixed size.
	FixedBinary TypeEnum = 127
)

// scalarSizes maps every scalar enum to its byte size; zero means unknown.
var scalarSizes = [128]int16{
	Int8:         1,
	Int16:        2,
	Int32:        4,
	Int64:        8,
	Int128:       16,
	UInt8:        1,
	UInt16:       2,
	UInt32:       4,
	UInt64:       8,
	UInt128:      16,
	Float16:      2,
	Float32:      4,
	Float64:      8,
	Float128:     16,
	Decimal32:    4,
	Decimal64:    8,
	Decimal128:   16,
	Decimal:      16,
	SmallDecimal: 8,
	Bool:         1,
	Utf16Char:    2,
	UUID:         16,
	DateTime:     8,
	Timestamp:    8,
	Symbol:       16,
	Symbol32:     32,
	Symbol64:     64,
	Symbol128:    128,
	Symbol256:    256,
	Complex64:    8,
	Complex128:   16,
}

// Size returns the fixed byte size of a scalar enum, or -1 for anything
// without a statically known size.
func (e TypeEnum) Size() int {
	if e >= FixedBinary {
		return -1
	}
	if s := scalarSizes[e]; s > 0 {
		return int(s)
	}

	return -1
}

// IsScalar reports whether e is in the scalar range and has a known size.
func (e TypeEnum) IsScalar() bool {
	return e > None && e <= MaxScalar && scalarSizes[e] > 0
}

// IsComposite reports whether e is a tuple, container or variable-size shape.
func (e TypeEnum) IsComposite() bool {
	return e > MaxScalar && e <= MaxTypeEnum
}

var typeEnumNames = map[TypeEnum]string{
	None: "None", Int8: "Int8", Int16: "Int16", Int32: "Int32", Int64: "Int64", Int128: "Int128",
	UInt8: "UInt8", UInt16: "UInt16", UInt32: "UInt32", UInt64: "UInt64", UInt128: "UInt128",
	Float16: "Float16", Float32: "Float32", Float64: "Float64", Float128: "Float128",
	Decimal32: "Decimal32", Decimal64: "Decimal64", Decimal128: "Decimal128", Decimal: "Decimal",
	SmallDecimal: "SmallDecimal", Bool: "Bool", Utf16Char: "Utf16Char", UUID: "UUID",
	DateTime: "DateTime", Timestamp: "Timestamp", Symbol: "Symbol", Symbol32: "Symbol32",
	Symbol64: "Symbol64", Symbol128: "Symbol128", Symbol256: "Symbol256",
	Complex64: "Complex64", Complex128: "Complex128",
	TupleT2: "TupleT2", TupleT3: "TupleT3", TupleTN: "TupleTN", TupleN: "TupleN", Tuple2: "Tuple2",
	Tuple3Byte: "Tuple3Byte", Tuple3Long: "Tuple3Long",
	Array: "Array", Map: "Map", Series: "Series", Frame: "Frame", Matrix: "Matrix",
	Binary: "Binary", String: "String", JSON: "JSON", UserType: "UserType",
	FixedBinary: "FixedBinary",
}

func (e TypeEnum) String() string {
	if name, ok := typeEnumNames[e]; ok {
		return name
	}

	return "TypeEnum(" + strconv.Itoa(int(e)) + ")"
}
