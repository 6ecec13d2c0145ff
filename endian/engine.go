// Package endian provides the byte-order engine used by every wire format in
// this module.
//
// All frames, headers and length prefixes are little-endian. Big-endian hosts
// are not supported: EnsureLittleEndianHost reports them so callers can refuse
// to run instead of producing frames that disagree with in-memory layouts.
//
//	engine := endian.GetLittleEndianEngine()
//	engine.PutUint32(buf[4:8], uint32(payloadLen))
//	buf = engine.AppendUint64(buf, uint64(ts))
package endian

import (
	"encoding/binary"
	"unsafe"

	"github.com/Spreads/Spreads-sub007/errs"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// EnsureLittleEndianHost returns ErrBigEndianUnsupported on big-endian hosts.
func EnsureLittleEndianHost() error {
	if !IsNativeLittleEndian() {
		return errs.ErrBigEndianUnsupported
	}

	return nil
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
