package serialization

import (
	"reflect"
	"testing"

	"github.com/Spreads/Spreads-sub007/buffers"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/header"
	"github.com/stretchr/testify/require"
)

type label struct{ Name string }

// labelSerializer writes the name bytes of a label.
type labelSerializer struct{}

func (labelSerializer) SerializerVersion() uint8 { return 2 }
func (labelSerializer) KnownTypeID() uint8       { return 42 }
func (labelSerializer) FixedSize() int           { return -1 }

func (labelSerializer) SizeOf(v label) (int, *buffers.RetainedMemory, error) {
	return len(v.Name), nil, nil
}

func (labelSerializer) Write(v label, dst buffers.DirectBuffer) (int, error) {
	return copy(dst, v.Name), nil
}

func (labelSerializer) Read(src buffers.DirectBuffer) (label, int, error) {
	return label{Name: string(src)}, len(src), nil
}

type ticks []int64

// ticksSerializer stores up to 255 int64 values as a TupleTN.
type ticksSerializer struct{}

func (ticksSerializer) SerializerVersion() uint8 { return 1 }
func (ticksSerializer) KnownTypeID() uint8       { return 0 }
func (ticksSerializer) FixedSize() int           { return -1 }

func (ticksSerializer) ElementType() header.TypeEnumOrFixedSize {
	return header.MustKnownType(header.Int64)
}

func (ticksSerializer) ElementCount(v ticks) int { return len(v) }

func (ticksSerializer) SizeOf(v ticks) (int, *buffers.RetainedMemory, error) {
	return 8 * len(v), nil, nil
}

func (ticksSerializer) Write(v ticks, dst buffers.DirectBuffer) (int, error) {
	for i, x := range v {
		dst.WriteInt64(8*i, x)
	}

	return 8 * len(v), nil
}

func (ticksSerializer) Read(src buffers.DirectBuffer) (ticks, int, error) {
	v := make(ticks, len(src)/8)
	for i := range v {
		v[i] = src.ReadInt64(8 * i)
	}

	return v, 8 * len(v), nil
}

// stubSerializer is a do-nothing serializer with configurable metadata.
type stubSerializer[T any] struct{ version, id uint8 }

func (s stubSerializer[T]) SerializerVersion() uint8 { return s.version }
func (s stubSerializer[T]) KnownTypeID() uint8       { return s.id }
func (stubSerializer[T]) FixedSize() int             { return -1 }

func (stubSerializer[T]) SizeOf(T) (int, *buffers.RetainedMemory, error) { return 0, nil, nil }
func (stubSerializer[T]) Write(T, buffers.DirectBuffer) (int, error)      { return 0, nil }

func (stubSerializer[T]) Read(buffers.DirectBuffer) (T, int, error) {
	var v T
	return v, 0, nil
}

func TestRegistry(t *testing.T) {
	require.NoError(t, Register[label](labelSerializer{}))
	t.Cleanup(Unregister[label])

	s, ok := Lookup[label]()
	require.True(t, ok)
	require.IsType(t, labelSerializer{}, s)

	typ, ok := TypeForKnownID(42)
	require.True(t, ok)
	require.Equal(t, reflect.TypeFor[label](), typ)

	err := Register[label](labelSerializer{})
	require.ErrorIs(t, err, errs.ErrInvalidOperation)

	type other struct{}
	err = Register[other](stubSerializer[other]{version: 1, id: 42})
	require.ErrorIs(t, err, errs.ErrBadTypeEnum)
	_, ok = Lookup[other]()
	require.False(t, ok)

	err = Register[other](stubSerializer[other]{version: 1, id: MaxKnownTypeID + 1})
	require.ErrorIs(t, err, errs.ErrBadTypeEnum)
	err = Register[other](stubSerializer[other]{version: 0})
	require.ErrorIs(t, err, errs.ErrInvalidOperation)
	err = Register[other](stubSerializer[other]{version: MaxSerializerVersion + 1})
	require.ErrorIs(t, err, errs.ErrInvalidOperation)
	err = Register[other](nil)
	require.ErrorIs(t, err, errs.ErrInvalidOperation)

	Unregister[label]()
	_, ok = Lookup[label]()
	require.False(t, ok)
	_, ok = TypeForKnownID(42)
	require.False(t, ok)

	// Unregistering twice is harmless.
	Unregister[label]()
}

func TestCodec_RegisteredSerializer(t *testing.T) {
	require.NoError(t, Register[label](labelSerializer{}))
	t.Cleanup(Unregister[label])

	c := mustCodec[label](t)
	id, ok := c.Header().UserTypeID()
	require.True(t, ok)
	require.Equal(t, uint8(42), id)
	require.Equal(t, uint8(2), c.Header().VersionAndFlags.ConverterVersion())

	buf, got, _ := roundTrip(t, c, label{Name: "EURUSD"}, nil)
	require.Equal(t, label{Name: "EURUSD"}, got)
	require.Len(t, buf, header.Size+PayloadLengthSize+6)
}

func TestCodec_UnregisteredStructUsesJSON(t *testing.T) {
	c := mustCodec[label](t)
	require.Equal(t, header.JSON, c.Header().TypeEnum())

	_, got, _ := roundTrip(t, c, label{Name: "GBPUSD"}, nil)
	require.Equal(t, label{Name: "GBPUSD"}, got)
}

func TestCodec_FixedArraySerializer(t *testing.T) {
	c, err := NewCodecWith[ticks](ticksSerializer{})
	require.NoError(t, err)
	require.Equal(t, header.TupleTN, c.Header().TypeEnum())

	v := ticks{10, 20, 30}
	buf, got, _ := roundTrip(t, c, v, nil)
	require.Equal(t, v, got)
	require.Len(t, buf, header.Size+24)

	h, err := header.ParseDataTypeHeader(buf)
	require.NoError(t, err)
	n, ok := h.TupleTNCount()
	require.True(t, ok)
	require.Equal(t, 3, n)

	// The count is part of the header, so a slot accepts a single count.
	var slot header.DataTypeHeader
	_, err = c.Write(make([]byte, 64), ticks{1}, nil, &slot)
	require.NoError(t, err)
	_, err = c.Write(make([]byte, 64), ticks{1, 2}, nil, &slot)
	require.ErrorIs(t, err, errs.ErrHeaderMismatch)

	_, _, err = c.SizeOf(ticks{}, false)
	require.ErrorIs(t, err, errs.ErrFixedSizeOutOfRange)
}

func TestNewCodecWith_Validation(t *testing.T) {
	_, err := NewCodecWith[int64](nil)
	require.ErrorIs(t, err, errs.ErrInvalidOperation)

	_, err = NewCodecWith[int64](stubSerializer[int64]{version: 4})
	require.ErrorIs(t, err, errs.ErrInvalidOperation)

	c, err := NewCodecWith[int64](stubSerializer[int64]{version: 3})
	require.NoError(t, err)
	require.Equal(t, header.Binary, c.Header().TypeEnum())
	require.Equal(t, uint8(3), c.Header().VersionAndFlags.ConverterVersion())

	c, err = NewCodecWith[int64](shortWriter{size: 200})
	require.NoError(t, err)
	size, ok := c.Header().TupleNFixedSize()
	require.True(t, ok)
	require.Equal(t, 200, size)
}
