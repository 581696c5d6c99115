// Package hash provides the value hash used by dictionary identity indexes.
//
// # XXH64
//
// Values are hashed over their canonical encoded bytes with XXH64
// (github.com/cespare/xxhash/v2):
//
//   - ~10-20 GB/s on modern CPUs with the assembly implementations
//   - Good avalanche on short keys (4 and 8 byte numerics)
//   - Stable across platforms and Go versions
//
// The low bits of the hash select a bucket; the high 32 bits are kept in the
// table as a tag so most mismatches are rejected without touching the value
// store.
//
// # Usage
//
//	h := hash.Sum64(encoded)
//	bucket := hash.Bucket(h, mask)
//	tag := hash.Tag(h)
package hash
