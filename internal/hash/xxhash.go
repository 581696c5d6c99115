package hash

import (
	"github.com/cespare/xxhash/v2"
)

// Sum64 returns the XXH64 digest of b.
func Sum64(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Bucket selects a bucket for h in a table of mask+1 buckets (a power of two).
func Bucket(h, mask uint64) uint64 {
	return h & mask
}

// Tag returns the high 32 bits of h.
func Tag(h uint64) uint32 {
	return uint32(h >> 32)
}
