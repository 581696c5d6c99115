// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of buffers returned by AllocAligned (one cache line).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	// Over-allocate so the start can be shifted up by at most Alignment-1 bytes.
	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// Uint64s reinterprets b as a slice of uint64 words.
//
// b must be 8-byte aligned (mmap pages and AllocAligned buffers are). Trailing
// bytes that do not fill a whole word are not addressable through the view.
// The view aliases b and shares its lifetime.
func Uint64s(b []byte) []uint64 {
	n := len(b) / 8
	if n == 0 {
		return nil
	}
	ptr := unsafe.Pointer(&b[0]) //nolint:gosec // unsafe is required for typed views
	if uintptr(ptr)%8 != 0 {
		panic("mem: buffer is not 8-byte aligned")
	}
	return unsafe.Slice((*uint64)(ptr), n) //nolint:gosec // unsafe is required for typed views
}
