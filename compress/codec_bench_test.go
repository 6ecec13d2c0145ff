package compress

import (
	"fmt"
	"testing"

	"github.com/Spreads/Spreads-sub007/format"
)

func BenchmarkCompressWithHeader(b *testing.B) {
	cfg, err := NewConfig(WithCompressionLimit(0))
	if err != nil {
		b.Fatal(err)
	}

	for _, size := range []int{1024, 16 * 1024, 256 * 1024} {
		src := AppendFrame(nil, binaryHeader(true), testTimestamp, compressibleData(size))
		dst := make([]byte, len(src))

		for _, method := range allMethods[1:] {
			b.Run(fmt.Sprintf("%s/%d", method, size), func(b *testing.B) {
				b.SetBytes(int64(size))
				b.ReportAllocs()
				for b.Loop() {
					if _, err := CompressWithHeader(src, dst, method, cfg); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkDecompressWithHeader(b *testing.B) {
	cfg, err := NewConfig(WithCompressionLimit(0))
	if err != nil {
		b.Fatal(err)
	}

	for _, method := range []format.CompressionMethod{format.CompressionZlib, format.CompressionLZ4, format.CompressionZstd} {
		src := AppendFrame(nil, binaryHeader(true), testTimestamp, compressibleData(64*1024))
		compressed := make([]byte, len(src))
		n, err := CompressWithHeader(src, compressed, method, cfg)
		if err != nil {
			b.Fatal(err)
		}
		out := make([]byte, len(src))

		b.Run(method.String(), func(b *testing.B) {
			b.SetBytes(int64(len(src)))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := DecompressWithHeader(compressed[:n], out); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
