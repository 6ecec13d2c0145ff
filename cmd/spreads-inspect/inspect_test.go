package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	spreads "github.com/Spreads/Spreads-sub007"
	"github.com/Spreads/Spreads-sub007/compress"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/header"
	"github.com/stretchr/testify/require"
)

func runInspect(t *testing.T, args ...string) (string, error) {
	t.Helper()
	tool := newInspect()
	var out bytes.Buffer
	tool.Root.SetOut(&out)
	tool.Root.SetErr(&out)
	tool.Root.SetArgs(args)
	err := tool.Root.Execute()

	return out.String(), err
}

func writeFrames(t *testing.T, dir string) (string, []byte) {
	t.Helper()
	h := header.Scalar(header.MustKnownType(header.Binary))
	h.VersionAndFlags.SetTimestamped(true)

	var data []byte
	for i := range 4 {
		var payload bytes.Buffer
		for payload.Len() < 4096*(i+1) {
			fmt.Fprintf(&payload, "tick=%d,bid=%d;", payload.Len(), 100+i)
		}
		data = compress.AppendFrame(data, h, format.Timestamp(1_700_000_000_000_000_000+i), payload.Bytes())
	}
	data = compress.AppendFrame(data, header.Scalar(header.MustKnownType(header.String)), 0, []byte("short"))

	path := filepath.Join(dir, "frames.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path, data
}

func TestHeaderCommand(t *testing.T) {
	h := header.Scalar(header.MustKnownType(header.Int64))
	h.VersionAndFlags.SetTimestamped(true)

	out, err := runInspect(t, "header", hex.EncodeToString(h.Bytes()))
	require.NoError(t, err)
	require.Contains(t, out, "Int64")
	require.Contains(t, out, "Timestamped")
	require.Contains(t, out, "true")
	require.Contains(t, out, "8")

	_, err = runInspect(t, "header", "0004")
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	_, err = runInspect(t, "header", "zz")
	require.Error(t, err)
}

func TestCompressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in, original := writeFrames(t, dir)
	packed := filepath.Join(dir, "packed.bin")
	unpacked := filepath.Join(dir, "unpacked.bin")

	for _, method := range []string{"zstd", "LZ4", "zlib", "none"} {
		t.Run(method, func(t *testing.T) {
			out, err := runInspect(t, "compress", "--method", method, in, packed)
			require.NoError(t, err)
			require.Contains(t, out, "5 frames")

			compressed, err := os.ReadFile(packed)
			require.NoError(t, err)
			if method == "none" {
				require.Equal(t, original, compressed)
			} else {
				require.Less(t, len(compressed), len(original))
			}

			out, err = runInspect(t, "frames", "--verify", packed)
			require.NoError(t, err)
			require.Contains(t, out, "5 frames")
			require.Contains(t, out, "2023-11-14T22:13:20Z")

			_, err = runInspect(t, "decompress", packed, unpacked)
			require.NoError(t, err)
			got, err := os.ReadFile(unpacked)
			require.NoError(t, err)
			require.Equal(t, original, got)
		})
	}
}

func TestFramesCommand(t *testing.T) {
	in, _ := writeFrames(t, t.TempDir())

	out, err := runInspect(t, "frames", in)
	require.NoError(t, err)
	require.Contains(t, out, "XXH64")
	require.NotContains(t, out, "Raw XXH64")
	require.Contains(t, out, "None")
	require.NotContains(t, out, "Zstd")
	require.Contains(t, out, "String")
	require.Contains(t, out, "5 frames")
	require.Equal(t, 4, strings.Count(out, "2023-11-14T22:13:20"))

	truncated := filepath.Join(t.TempDir(), "truncated.bin")
	data, err := os.ReadFile(in)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(truncated, data[:len(data)-2], 0o644))
	_, err = runInspect(t, "frames", truncated)
	require.ErrorIs(t, err, errs.ErrInvalidLength)
}

func TestParseMethod(t *testing.T) {
	m, err := parseMethod("ZSTD")
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, m)

	_, err = parseMethod("snappy")
	require.ErrorIs(t, err, errs.ErrNotSupported)

	_, err = runInspect(t, "compress", "--method", "snappy", "a", "b")
	require.ErrorIs(t, err, errs.ErrNotSupported)
}

type codecFrames struct {
	prices []float64
	blob   []byte
	text   string
}

// writeCodecFrames writes a float64 series followed by a stored-raw []byte
// frame and a compressed string frame, all produced by codecs.
func writeCodecFrames(t *testing.T, dir string) (string, []byte, codecFrames) {
	t.Helper()
	want := codecFrames{
		prices: []float64{101.25, 101.5, 101.75},
		blob:   make([]byte, 4096),
		text:   strings.Repeat("bid=101.25;ask=101.50;", 200),
	}
	r := rand.New(rand.NewPCG(1, 2))
	for i := range want.blob {
		want.blob[i] = byte(r.Uint32())
	}

	s, err := spreads.NewSeries[spreads.Timestamp, float64]()
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	for i, p := range want.prices {
		require.NoError(t, s.Append(spreads.Timestamp(1_700_000_000_000_000_000+i), p))
	}
	floats, err := spreads.NewCodec[float64]()
	require.NoError(t, err)
	data, err := spreads.AppendSeries(nil, s, floats)
	require.NoError(t, err)

	blobs, err := spreads.NewCodec[[]byte](spreads.WithCompression(spreads.CompressionZstd))
	require.NoError(t, err)
	ts := spreads.Timestamp(1_700_000_000_000_000_000)
	data, err = blobs.Append(data, want.blob, &ts)
	require.NoError(t, err)

	texts, err := spreads.NewCodec[string](spreads.WithCompression(spreads.CompressionZstd))
	require.NoError(t, err)
	data, err = texts.Append(data, want.text, nil)
	require.NoError(t, err)

	path := filepath.Join(dir, "codec.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path, data, want
}

func readCodecFrames(t *testing.T, data []byte) codecFrames {
	t.Helper()
	floats, err := spreads.NewCodec[float64]()
	require.NoError(t, err)
	blobs, err := spreads.NewCodec[[]byte]()
	require.NoError(t, err)
	texts, err := spreads.NewCodec[string]()
	require.NoError(t, err)

	var got codecFrames
	for i := range 3 {
		v, ts, n, err := floats.Read(data)
		require.NoError(t, err)
		require.Equal(t, spreads.Timestamp(1_700_000_000_000_000_000+i), ts)
		got.prices = append(got.prices, v)
		data = data[n:]
	}
	blob, _, n, err := blobs.Read(data)
	require.NoError(t, err)
	got.blob = blob
	data = data[n:]

	text, _, n, err := texts.Read(data)
	require.NoError(t, err)
	got.text = text
	require.Len(t, data, n)

	return got
}

func TestCodecFrames(t *testing.T) {
	dir := t.TempDir()
	in, original, want := writeCodecFrames(t, dir)

	out, err := runInspect(t, "frames", "--verify", in)
	require.NoError(t, err)
	require.Contains(t, out, "5 frames")
	require.Contains(t, out, "Float64")
	require.Contains(t, out, "Zstd (stored)")
	require.Equal(t, 4, strings.Count(out, "2023-11-14T22:13:20"))

	unpacked := filepath.Join(dir, "unpacked.bin")
	_, err = runInspect(t, "decompress", in, unpacked)
	require.NoError(t, err)
	raw, err := os.ReadFile(unpacked)
	require.NoError(t, err)
	require.Greater(t, len(raw), len(original))
	require.Equal(t, want, readCodecFrames(t, raw))

	out, err = runInspect(t, "frames", unpacked)
	require.NoError(t, err)
	require.NotContains(t, out, "Zstd")

	for _, method := range []string{"zlib", "lz4", "zstd"} {
		t.Run(method, func(t *testing.T) {
			packed := filepath.Join(dir, method+".bin")
			_, err := runInspect(t, "compress", "--method", method, "--limit", "0", unpacked, packed)
			require.NoError(t, err)
			compressed, err := os.ReadFile(packed)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(raw))
			require.Equal(t, want, readCodecFrames(t, compressed))

			again := filepath.Join(dir, method+".raw")
			_, err = runInspect(t, "decompress", packed, again)
			require.NoError(t, err)
			got, err := os.ReadFile(again)
			require.NoError(t, err)
			require.Equal(t, raw, got)
		})
	}
}
