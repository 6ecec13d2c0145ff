package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty payload", "", 0xef46db3751d8e999},
		{"short payload", "test", 0x4fdcca5ddb678139},
		{"long payload", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sum, Checksum([]byte(tt.data)))
		})
	}
}

func TestChecksumParts(t *testing.T) {
	payload := []byte("this is a longer test string to hash")
	require.Equal(t, Checksum(payload), ChecksumParts(payload[:7], payload[7:20], payload[20:]))
	require.Equal(t, Checksum(nil), ChecksumParts())
}
