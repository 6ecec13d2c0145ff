package serialization

import (
	"encoding/binary"

	"github.com/Spreads/Spreads-sub007/buffers"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/internal/pool"
	"github.com/cockroachdb/errors"
)

// TimestampsTypeID is the known type id of Timestamps.
const TimestampsTypeID = 1

// Timestamps is a column of timestamps, usually the keys of a series.
//
// Its registered serializer stores it delta-of-delta encoded: the first
// timestamp, then the first delta, then the change of every further delta,
// each as a zigzag varint. Regular intervals cost one byte per timestamp.
type Timestamps []format.Timestamp

type timestampsSerializer struct {
	pool *buffers.Pool
}

var _ Serializer[Timestamps] = timestampsSerializer{}

func registerBuiltins() {
	if err := Register[Timestamps](timestampsSerializer{pool: buffers.DefaultPool()}); err != nil {
		panic(err)
	}
}

func (timestampsSerializer) SerializerVersion() uint8 { return 1 }
func (timestampsSerializer) KnownTypeID() uint8       { return TimestampsTypeID }
func (timestampsSerializer) FixedSize() int           { return -1 }

// SizeOf encodes the column to learn its size and hands the encoding over.
func (s timestampsSerializer) SizeOf(value Timestamps) (int, *buffers.RetainedMemory, error) {
	bb := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(bb)

	bb.B = appendTimestamps(bb.B[:0], value)
	if len(bb.B) == 0 {
		return 0, nil, nil
	}
	mem := s.pool.Rent(len(bb.B))
	copy(mem.Bytes(), bb.B)

	return len(bb.B), mem, nil
}

func (timestampsSerializer) Write(value Timestamps, dst buffers.DirectBuffer) (int, error) {
	bb := pool.GetScratchBuffer()
	defer pool.PutScratchBuffer(bb)

	bb.B = appendTimestamps(bb.B[:0], value)
	if len(dst) < len(bb.B) {
		return -1, shortBuffer(len(bb.B), len(dst))
	}

	return copy(dst, bb.B), nil
}

func (timestampsSerializer) Read(src buffers.DirectBuffer) (Timestamps, int, error) {
	// Every timestamp takes at least one byte.
	out := make(Timestamps, 0, len(src))
	var prev, delta int64
	for off := 0; off < len(src); {
		v, n := binary.Varint(src[off:])
		if n <= 0 {
			return nil, -1, errors.Wrapf(errs.ErrCorrupted, "timestamp varint at offset %d", off)
		}
		off += n

		switch len(out) {
		case 0:
			prev = v
		case 1:
			delta = v
			prev += delta
		default:
			delta += v
			prev += delta
		}
		out = append(out, format.Timestamp(prev))
	}

	return out, len(src), nil
}

func appendTimestamps(dst []byte, ts Timestamps) []byte {
	var prev, prevDelta int64
	for i, t := range ts {
		cur := int64(t)
		switch i {
		case 0:
			dst = binary.AppendVarint(dst, cur)
		case 1:
			prevDelta = cur - prev
			dst = binary.AppendVarint(dst, prevDelta)
		default:
			delta := cur - prev
			dst = binary.AppendVarint(dst, delta-prevDelta)
			prevDelta = delta
		}
		prev = cur
	}

	return dst
}
