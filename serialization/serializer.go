package serialization

import (
	"reflect"
	"sync"

	"github.com/Spreads/Spreads-sub007/buffers"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/header"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
)

// Serializer is the per-type binary serializer contract.
//
// SizeOf and Write form a split: the codec asks for the size first, reserves
// that much room, then calls Write, which must write exactly that many bytes.
// A Serializer that cannot know its size without doing the work may return a
// prebuilt buffer from SizeOf; the codec then copies it instead of calling
// Write and disposes it afterwards.
type Serializer[T any] interface {
	// SerializerVersion is the payload format version, 1..3. It is stored in
	// the header's converter version bits.
	SerializerVersion() uint8

	// KnownTypeID identifies the type across processes, 1..127, or 0 if the
	// type has no id.
	KnownTypeID() uint8

	// FixedSize returns the payload size of every value, or -1 if it varies.
	FixedSize() int

	// SizeOf returns the payload size of value and an optional prebuilt
	// payload of exactly that size. Ownership of the buffer moves to the caller.
	SizeOf(value T) (int, *buffers.RetainedMemory, error)

	// Write writes value into dst and returns the bytes written.
	Write(value T, dst buffers.DirectBuffer) (int, error)

	// Read reads a value from src, which holds exactly one payload, and
	// returns the bytes consumed.
	Read(src buffers.DirectBuffer) (T, int, error)
}

// FixedArraySerializer is implemented by serializers of homogeneous arrays
// whose length varies per value. Their frames use a TupleTN header whose count
// is patched for each value, so every frame is fixed-size on its own.
type FixedArraySerializer[T any] interface {
	Serializer[T]

	// ElementType describes one element.
	ElementType() header.TypeEnumOrFixedSize

	// ElementCount returns the number of elements of value, 1..255.
	ElementCount(value T) int
}

// MaxSerializerVersion is the largest version a Serializer may report.
const MaxSerializerVersion = 3

// MaxKnownTypeID is the largest id a Serializer may report.
const MaxKnownTypeID = 127

type registration struct {
	serializer any
	id         uint8
}

var registry struct {
	sync.RWMutex
	byType swiss.Map[reflect.Type, registration]
	byID   swiss.Map[uint8, reflect.Type]
}

func init() {
	registry.byType.Init(16)
	registry.byID.Init(16)
	registerBuiltins()
}

// Register binds s to the Go type T. Codecs created afterwards for T use s
// instead of the built-in or JSON serializer.
//
// Returns:
//   - error: ErrInvalidOperation if T is already registered or s reports an
//     out of range version, ErrBadTypeEnum if s reports an out of range or
//     already taken known type id
func Register[T any](s Serializer[T]) error {
	if s == nil {
		return errors.Wrap(errs.ErrInvalidOperation, "nil serializer")
	}
	if v := s.SerializerVersion(); v < 1 || v > MaxSerializerVersion {
		return errors.Wrapf(errs.ErrInvalidOperation, "serializer version %d is not in 1..%d", v, MaxSerializerVersion)
	}
	id := s.KnownTypeID()
	if id > MaxKnownTypeID {
		return errors.Wrapf(errs.ErrBadTypeEnum, "known type id %d is not in 1..%d", id, MaxKnownTypeID)
	}

	typ := reflect.TypeFor[T]()

	registry.Lock()
	defer registry.Unlock()

	if _, ok := registry.byType.Get(typ); ok {
		return errors.Wrapf(errs.ErrInvalidOperation, "a serializer for %s is already registered", typ)
	}
	if id != 0 {
		if other, ok := registry.byID.Get(id); ok {
			return errors.Wrapf(errs.ErrBadTypeEnum, "known type id %d is already taken by %s", id, other)
		}
		registry.byID.Put(id, typ)
	}
	registry.byType.Put(typ, registration{serializer: s, id: id})

	return nil
}

// Unregister removes the serializer registered for T. It does not affect
// codecs that were already created.
func Unregister[T any]() {
	typ := reflect.TypeFor[T]()

	registry.Lock()
	defer registry.Unlock()

	reg, ok := registry.byType.Get(typ)
	if !ok {
		return
	}
	registry.byType.Delete(typ)
	if reg.id != 0 {
		registry.byID.Delete(reg.id)
	}
}

// Lookup returns the serializer registered for T.
func Lookup[T any]() (Serializer[T], bool) {
	registry.RLock()
	reg, ok := registry.byType.Get(reflect.TypeFor[T]())
	registry.RUnlock()
	if !ok {
		return nil, false
	}
	s, ok := reg.serializer.(Serializer[T])

	return s, ok
}

// TypeForKnownID returns the Go type registered under a known type id.
func TypeForKnownID(id uint8) (reflect.Type, bool) {
	registry.RLock()
	defer registry.RUnlock()

	return registry.byID.Get(id)
}
