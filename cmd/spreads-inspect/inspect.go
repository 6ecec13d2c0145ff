package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Spreads/Spreads-sub007/compress"
	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/Spreads/Spreads-sub007/format"
	"github.com/Spreads/Spreads-sub007/header"
	"github.com/Spreads/Spreads-sub007/internal/hash"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// inspectT holds the commands and their flag values.
type inspectT struct {
	Root       *cobra.Command
	Header     *cobra.Command
	Frames     *cobra.Command
	Compress   *cobra.Command
	Decompress *cobra.Command

	method  string
	level   int
	limit   int
	shuffle bool
	verify  bool
}

func newInspect() *inspectT {
	t := &inspectT{}

	t.Root = &cobra.Command{
		Use:           "spreads-inspect",
		Short:         "Inspect serialized frames",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	t.Header = &cobra.Command{
		Use:   "header <hex>",
		Short: "decode a 4-byte data type header",
		Long: `
Decode the hex encoding of a data type header, e.g. "00040000" for Int64.
`,
		Args: cobra.ExactArgs(1),
		RunE: t.runHeader,
	}
	t.Frames = &cobra.Command{
		Use:   "frames <file>",
		Short: "list the frames of a file",
		Long: `
List every frame stored back to back in a file with its header, timestamp,
sizes and the xxHash64 of its stored body.
`,
		Args: cobra.ExactArgs(1),
		RunE: t.runFrames,
	}
	t.Compress = &cobra.Command{
		Use:   "compress <in> <out>",
		Short: "compress every frame of a file",
		Args:  cobra.ExactArgs(2),
		RunE:  t.runCompress,
	}
	t.Decompress = &cobra.Command{
		Use:   "decompress <in> <out>",
		Short: "decompress every frame of a file",
		Args:  cobra.ExactArgs(2),
		RunE:  t.runDecompress,
	}

	t.Root.AddCommand(t.Header, t.Frames, t.Compress, t.Decompress)

	t.Frames.Flags().BoolVar(&t.verify, "verify", false, "decompress each frame and hash the raw body")
	t.Compress.Flags().StringVar(&t.method, "method", "zstd", "compression method: none, zlib, lz4 or zstd")
	t.Compress.Flags().IntVar(&t.level, "level", 0, "compression level, 0 for the method default")
	t.Compress.Flags().IntVar(&t.limit, "limit", compress.DefaultCompressionLimit, "frames shorter than this are stored raw")
	t.Compress.Flags().BoolVar(&t.shuffle, "shuffle", false, "byte-shuffle fixed-size elements before compressing")

	return t
}

func (t *inspectT) runHeader(cmd *cobra.Command, args []string) error {
	s := strings.TrimPrefix(strings.ReplaceAll(args[0], " ", ""), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrapf(err, "header %q", args[0])
	}
	if len(raw) != header.Size {
		return errors.Wrapf(errs.ErrInvalidHeaderSize, "header %q has %d bytes", args[0], len(raw))
	}
	h, err := header.ParseDataTypeHeader(raw)
	if err != nil {
		return err
	}

	flags := h.VersionAndFlags
	tbl := newTable(cmd.OutOrStdout(), "Field", "Value")
	tbl.AppendBulk([][]string{
		{"Shape", h.String()},
		{"TypeEnum", h.TypeEnum().String()},
		{"TEOFS1", h.TEOFS1.String()},
		{"TEOFS2", h.TEOFS2.String()},
		{"Format", flags.Format().String()},
		{"Compression", flags.CompressionMethod().String()},
		{"Timestamped", strconv.FormatBool(flags.IsTimestamped())},
		{"Shuffled", strconv.FormatBool(flags.IsShuffled())},
		{"Version", strconv.Itoa(int(flags.ConverterVersion()))},
		{"FixedSize", strconv.Itoa(h.FixedSize())},
	})
	tbl.Render()

	return nil
}

func (t *inspectT) runFrames(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	columns := []string{"#", "Offset", "Shape", "Compression", "Timestamp", "Size", "Raw", "XXH64"}
	if t.verify {
		columns = append(columns, "Raw XXH64")
	}
	tbl := newTable(cmd.OutOrStdout(), columns...)

	var frames, stored, raw int
	err = forEachFrame(src, func(offset int, info compress.FrameInfo) error {
		row := []string{
			strconv.Itoa(frames),
			strconv.Itoa(offset),
			info.Header.Shape().String(),
			formatCompression(info),
			formatTimestamp(info),
			strconv.Itoa(info.Size),
			strconv.Itoa(info.RawLength),
			fmt.Sprintf("%016x", hash.Checksum(info.Body)),
		}
		if t.verify {
			out, err := decompressFrame(src[offset:offset+info.Size], info)
			if err != nil {
				return errors.Wrapf(err, "frame %d at offset %d", frames, offset)
			}
			row = append(row, fmt.Sprintf("%016x", hash.Checksum(out[info.Size-len(info.Body):])))
		}
		tbl.Append(row)
		frames++
		stored += info.Size
		raw += info.Size - len(info.Body) + info.RawLength

		return nil
	})
	if err != nil {
		return err
	}
	footer := make([]string, len(columns))
	footer[5], footer[6] = strconv.Itoa(stored), strconv.Itoa(raw)
	tbl.SetFooter(footer)
	tbl.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "%d frames\n", frames)

	return nil
}

func (t *inspectT) runCompress(cmd *cobra.Command, args []string) error {
	method, err := parseMethod(t.method)
	if err != nil {
		return err
	}
	opts := []compress.Option{
		compress.WithCompressionLimit(t.limit),
		compress.WithShuffle(t.shuffle),
	}
	if t.level != 0 {
		switch method {
		case format.CompressionZlib:
			opts = append(opts, compress.WithZlibLevel(t.level))
		case format.CompressionLZ4:
			opts = append(opts, compress.WithLZ4Level(t.level))
		case format.CompressionZstd:
			opts = append(opts, compress.WithZstdLevel(t.level))
		}
	}
	cfg, err := compress.NewConfig(opts...)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var out []byte
	frames := 0
	err = forEachFrame(src, func(offset int, info compress.FrameInfo) error {
		dst := make([]byte, info.Size)
		n, err := compress.CompressWithHeader(src[offset:], dst, method, cfg)
		if err != nil {
			return errors.Wrapf(err, "frame %d at offset %d", frames, offset)
		}
		out = append(out, dst[:n]...)
		frames++

		return nil
	})
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), args[1], out, frames, len(src))
}

func (t *inspectT) runDecompress(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var out []byte
	frames := 0
	err = forEachFrame(src, func(offset int, info compress.FrameInfo) error {
		dst, err := decompressFrame(src[offset:offset+info.Size], info)
		if err != nil {
			return errors.Wrapf(err, "frame %d at offset %d", frames, offset)
		}
		out = append(out, dst...)
		frames++

		return nil
	})
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), args[1], out, frames, len(src))
}

// forEachFrame calls fn for every frame stored back to back in src.
func forEachFrame(src []byte, fn func(offset int, info compress.FrameInfo) error) error {
	for offset := 0; offset < len(src); {
		info, err := compress.InspectFrame(src[offset:])
		if err != nil {
			return errors.Wrapf(err, "offset %d", offset)
		}
		if err := fn(offset, info); err != nil {
			return err
		}
		offset += info.Size
	}

	return nil
}

func decompressFrame(frame []byte, info compress.FrameInfo) ([]byte, error) {
	dst := make([]byte, info.Size-len(info.Body)+info.RawLength)
	n, err := compress.DecompressWithHeader(frame, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

func writeResult(w io.Writer, path string, out []byte, frames, inSize int) error {
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d frames: %d -> %d bytes\n", frames, inSize, len(out))

	return nil
}

func parseMethod(s string) (format.CompressionMethod, error) {
	for m := format.CompressionNone; m <= format.CompressionZstd; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}

	return 0, errors.Wrapf(errs.ErrNotSupported, "compression method %q", s)
}

func formatCompression(info compress.FrameInfo) string {
	method := info.Header.VersionAndFlags.CompressionMethod().String()
	if info.StoredRaw {
		return method + " (stored)"
	}

	return method
}

func formatTimestamp(info compress.FrameInfo) string {
	if !info.Header.VersionAndFlags.IsTimestamped() {
		return "-"
	}

	return time.Unix(0, int64(info.Timestamp)).UTC().Format(time.RFC3339Nano)
}

func newTable(w io.Writer, columns ...string) *tablewriter.Table {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader(columns)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetAutoWrapText(false)
	tbl.SetAlignment(tablewriter.ALIGN_LEFT)

	return tbl
}
