package serialization

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Spreads/Spreads-sub007/compress"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/header"
	"github.com/stretchr/testify/require"
)

// Frames written by a Codec go through the compress framer and back.

func TestFramer_FixedFrames(t *testing.T) {
	c := mustCodec[float64](t)
	ts := format.Timestamp(1_700_000_000_000_000_000)
	frame, err := c.Append(nil, math.Pi, &ts)
	require.NoError(t, err)

	info, err := compress.InspectFrame(frame)
	require.NoError(t, err)
	require.True(t, info.Fixed)
	require.Equal(t, len(frame), info.Size)
	require.Equal(t, ts, info.Timestamp)
	require.Len(t, info.Body, 8)
	require.Equal(t, 8, info.RawLength)

	cfg, err := compress.NewConfig(compress.WithCompressionLimit(0))
	require.NoError(t, err)
	dst := make([]byte, len(frame))
	n, err := compress.CompressWithHeader(frame, dst, format.CompressionZstd, cfg)
	require.NoError(t, err)
	require.Equal(t, frame, dst[:n])

	n, err = compress.DecompressWithHeader(frame, dst)
	require.NoError(t, err)
	require.Equal(t, frame, dst[:n])

	// Fixed arrays carry their count in the header.
	ticks := mustCodec[[3]int32](t)
	frame, err = ticks.Append(nil, [3]int32{1, 2, 3}, nil)
	require.NoError(t, err)
	info, err = compress.InspectFrame(frame)
	require.NoError(t, err)
	require.True(t, info.Fixed)
	require.Equal(t, header.Size+12, info.Size)
	require.Equal(t, len(frame), info.Size)
}

func TestFramer_CompressCodecFrames(t *testing.T) {
	cfg, err := compress.NewConfig(compress.WithCompressionLimit(0))
	require.NoError(t, err)
	text := strings.Repeat("bid=101.25;ask=101.50;", 200)
	ts := format.Timestamp(1_700_000_000_123_456_789)

	for _, timestamped := range []bool{false, true} {
		for _, method := range []format.CompressionMethod{format.CompressionZlib, format.CompressionLZ4, format.CompressionZstd} {
			name := method.String()
			if timestamped {
				name += "/timestamped"
			}
			t.Run(name, func(t *testing.T) {
				c := mustCodec[string](t)
				var tsp *format.Timestamp
				if timestamped {
					tsp = &ts
				}
				frame, err := c.Append(nil, text, tsp)
				require.NoError(t, err)

				info, err := compress.InspectFrame(frame)
				require.NoError(t, err)
				require.False(t, info.Fixed)
				require.Equal(t, len(frame), info.Size)
				require.Equal(t, []byte(text), info.Body)

				dst := make([]byte, len(frame))
				n, err := compress.CompressWithHeader(frame, dst, method, cfg)
				require.NoError(t, err)
				require.Less(t, n, len(frame))

				got, gotTS, consumed, err := c.Read(dst[:n])
				require.NoError(t, err)
				require.Equal(t, n, consumed)
				require.Equal(t, text, got)
				if timestamped {
					require.Equal(t, ts, gotTS)
				}

				out := make([]byte, len(frame))
				m, err := compress.DecompressWithHeader(dst[:n], out)
				require.NoError(t, err)
				require.Equal(t, frame, out[:m])
			})
		}
	}
}

func TestFramer_DecompressCodecFrames(t *testing.T) {
	shuffle, err := compress.NewConfig(compress.WithShuffle(true))
	require.NoError(t, err)

	blob := make([]byte, 4096)
	r := rand.New(rand.NewPCG(3, 4))
	for i := range blob {
		blob[i] = byte(r.Uint32())
	}
	prices := make([]float64, 1024)
	for i := range prices {
		prices[i] = 100 + math.Sin(float64(i)/50)
	}
	ts := format.Timestamp(42)

	t.Run("stored raw", func(t *testing.T) {
		packed := mustCodec[[]byte](t, WithCompression(format.CompressionZstd))
		frame, err := packed.Append(nil, blob, &ts)
		require.NoError(t, err)

		info, err := compress.InspectFrame(frame)
		require.NoError(t, err)
		require.True(t, info.StoredRaw)
		require.Equal(t, format.CompressionZstd, info.Header.VersionAndFlags.CompressionMethod())
		require.Equal(t, len(blob), info.RawLength)

		want, err := mustCodec[[]byte](t).Append(nil, blob, &ts)
		require.NoError(t, err)
		out := make([]byte, len(want))
		n, err := compress.DecompressWithHeader(frame, out)
		require.NoError(t, err)
		require.Equal(t, want, out[:n])
	})

	t.Run("compressed", func(t *testing.T) {
		text := strings.Repeat("tick;", 500)
		frame, err := mustCodec[string](t, WithCompression(format.CompressionLZ4)).Append(nil, text, nil)
		require.NoError(t, err)

		info, err := compress.InspectFrame(frame)
		require.NoError(t, err)
		require.False(t, info.StoredRaw)
		require.Equal(t, len(text), info.RawLength)

		want, err := mustCodec[string](t).Append(nil, text, nil)
		require.NoError(t, err)
		out := make([]byte, info.Size-len(info.Body)+info.RawLength)
		n, err := compress.DecompressWithHeader(frame, out)
		require.NoError(t, err)
		require.Equal(t, want, out[:n])
	})

	t.Run("shuffled", func(t *testing.T) {
		c := mustCodec[[]float64](t, WithCompression(format.CompressionZstd), WithCompressionConfig(shuffle))
		frame, err := c.Append(nil, prices, &ts)
		require.NoError(t, err)
		h, err := header.ParseDataTypeHeader(frame)
		require.NoError(t, err)
		require.True(t, h.VersionAndFlags.IsShuffled())

		want, err := mustCodec[[]float64](t).Append(nil, prices, &ts)
		require.NoError(t, err)
		out := make([]byte, len(want))
		n, err := compress.DecompressWithHeader(frame, out)
		require.NoError(t, err)
		require.Equal(t, want, out[:n])
	})
}
