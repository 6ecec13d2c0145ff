// Package hash computes payload checksums reported by the inspection tools.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of a frame payload.
func Checksum(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

// ChecksumParts computes the xxHash64 of the concatenation of parts without
// materializing it.
func ChecksumParts(parts ...[]byte) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.Write(p)
	}

	return d.Sum64()
}
