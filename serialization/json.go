package serialization

import (
	"encoding/json"

	"github.com/Spreads/Spreads-sub007/buffers"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/internal/pool"
	"github.com/cockroachdb/errors"
)

// jsonSerializer is the fallback for types without a binary shape. SizeOf
// has to encode the value to learn its size, so it returns the encoding as a
// prebuilt buffer.
type jsonSerializer[T any] struct {
	builtinBase
	pool *buffers.Pool
}

func newJSONSerializer[T any]() *jsonSerializer[T] {
	return &jsonSerializer[T]{pool: buffers.DefaultPool()}
}

func (*jsonSerializer[T]) FixedSize() int { return -1 }

func (s *jsonSerializer[T]) encode(value T) (*pool.ByteBuffer, error) {
	bb := pool.GetScratchBuffer()
	enc := json.NewEncoder(bb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		pool.PutScratchBuffer(bb)
		return nil, errors.Wrap(err, "json encode")
	}
	// Encode terminates every value with a newline.
	bb.B = bb.B[:len(bb.B)-1]

	return bb, nil
}

func (s *jsonSerializer[T]) SizeOf(value T) (int, *buffers.RetainedMemory, error) {
	bb, err := s.encode(value)
	if err != nil {
		return -1, nil, err
	}
	defer pool.PutScratchBuffer(bb)

	mem := s.pool.Rent(bb.Len())
	copy(mem.Bytes(), bb.Bytes())

	return bb.Len(), mem, nil
}

func (s *jsonSerializer[T]) Write(value T, dst buffers.DirectBuffer) (int, error) {
	bb, err := s.encode(value)
	if err != nil {
		return -1, err
	}
	defer pool.PutScratchBuffer(bb)

	if len(dst) < bb.Len() {
		return -1, shortBuffer(bb.Len(), len(dst))
	}

	return copy(dst, bb.Bytes()), nil
}

func (s *jsonSerializer[T]) Read(src buffers.DirectBuffer) (T, int, error) {
	var v T
	if err := json.Unmarshal(src, &v); err != nil {
		return v, -1, errors.Wrapf(errs.ErrCorrupted, "json decode: %v", err)
	}

	return v, len(src), nil
}
