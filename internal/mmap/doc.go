// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// # Overview
//
// Anonymous mappings live outside the Go heap, so the garbage collector never
// scans or moves them. Dictionaries built during high-throughput ingestion
// keep their decoded values and hash tables here.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // zero-filled, read-write
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// # Safety
//
// Slices returned by Bytes are valid only until Close. Touching them after
// Close faults the process.
package mmap
