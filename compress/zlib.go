package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/Spreads/Spreads-sub007/format"
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zlib"
)

// Zlib levels accepted by ZlibCodec, matching the flate package.
const (
	MinZlibLevel = zlib.HuffmanOnly
	MaxZlibLevel = zlib.BestCompression
)

var errShortDestination = errors.New("compress: destination buffer is full")

// fixedWriter is an io.Writer over a fixed slice that fails instead of growing.
type fixedWriter struct {
	buf []byte
	n   int
}

func (w *fixedWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.buf)-w.n {
		return 0, errShortDestination
	}
	w.n += copy(w.buf[w.n:], p)

	return len(p), nil
}

// zlibWriter is a pooled writer with the destination it writes into. The
// destination is detached before the writer goes back to its pool.
type zlibWriter struct {
	zw  *zlib.Writer
	out fixedWriter
}

// zlibReader is a pooled reader with the source it reads from. The source is
// detached before the reader goes back to the pool.
type zlibReader struct {
	zr  io.ReadCloser
	src bytes.Reader
}

// zlibWriterPools holds one writer pool per level, indexed by level-MinZlibLevel.
var zlibWriterPools [MaxZlibLevel - MinZlibLevel + 1]sync.Pool

var zlibReaderPool sync.Pool

// ZlibCodec compresses blocks as zlib (RFC 1950) streams.
type ZlibCodec struct{}

var _ Codec = ZlibCodec{}

// Method implements Codec.
func (ZlibCodec) Method() format.CompressionMethod {
	return format.CompressionZlib
}

// CompressBlock compresses src into dst. Out of range levels use the default
// level. It returns -1 if the stream does not fit into dst.
func (ZlibCodec) CompressBlock(src, dst []byte, level int) int {
	if len(src) == 0 {
		return -1
	}
	if level < MinZlibLevel || level > MaxZlibLevel {
		level = zlib.DefaultCompression
	}

	pool := &zlibWriterPools[level-MinZlibLevel]
	w, _ := pool.Get().(*zlibWriter)
	if w == nil {
		w = &zlibWriter{}
		zw, err := zlib.NewWriterLevel(&w.out, level)
		if err != nil {
			return -1
		}
		w.zw = zw
	}
	w.out = fixedWriter{buf: dst}
	w.zw.Reset(&w.out)
	defer func() {
		w.out = fixedWriter{}
		pool.Put(w)
	}()

	if _, err := w.zw.Write(src); err != nil {
		return -1
	}
	if err := w.zw.Close(); err != nil {
		return -1
	}

	return w.out.n
}

// DecompressBlock decompresses src into dst. It returns -1 on corrupted input,
// a checksum mismatch, or output that does not fit into dst.
func (ZlibCodec) DecompressBlock(src, dst []byte) int {
	if len(src) == 0 {
		return -1
	}

	r, _ := zlibReaderPool.Get().(*zlibReader)
	if r == nil {
		r = &zlibReader{}
	}
	r.src.Reset(src)
	defer func() {
		r.src.Reset(nil)
		zlibReaderPool.Put(r)
	}()

	if r.zr == nil {
		zr, err := zlib.NewReader(&r.src)
		if err != nil {
			return -1
		}
		r.zr = zr
	} else if err := r.zr.(zlib.Resetter).Reset(&r.src, nil); err != nil {
		return -1
	}
	zr := r.zr

	total := 0
	for total < len(dst) {
		n, err := zr.Read(dst[total:])
		total += n
		if errors.Is(err, io.EOF) {
			return total
		}
		if err != nil {
			return -1
		}
	}

	// dst is full: the stream must end here, which also verifies the checksum.
	var probe [1]byte
	n, err := zr.Read(probe[:])
	if n > 0 || !errors.Is(err, io.EOF) {
		return -1
	}

	return total
}
