package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/Spreads/Spreads-sub007/errs"
	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	result := CheckEndianness()

	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	switch testBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, result)
	case 0x02:
		require.Equal(binary.LittleEndian, result)
	default:
		require.Failf("Unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestEnsureLittleEndianHost(t *testing.T) {
	err := EnsureLittleEndianHost()
	if IsNativeLittleEndian() {
		require.NoError(t, err)
	} else {
		require.ErrorIs(t, err, errs.ErrBigEndianUnsupported)
	}
}

func TestLittleEndianEngine_FrameLayout(t *testing.T) {
	engine := GetLittleEndianEngine()

	buf := make([]byte, 4)
	engine.PutUint32(buf, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)

	// A negative raw length must round-trip through the unsigned encoding.
	rawLen := int32(-17)
	engine.PutUint32(buf, uint32(rawLen))
	require.Equal(t, rawLen, int32(engine.Uint32(buf)))

	out := engine.AppendUint64(nil, uint64(1_700_000_000_000_000_000))
	require.Len(t, out, 8)
	require.Equal(t, uint64(1_700_000_000_000_000_000), engine.Uint64(out))
}
