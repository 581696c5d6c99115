// Package arena grants fixed-size buffers to mutable dictionaries and accounts
// every byte outstanding.
//
// The arena allocator keeps dictionary payloads out of the garbage-collected
// heap by handing out anonymous memory mappings. Dictionaries never allocate
// raw memory themselves: they ask an Allocator for a Buffer and hand it back
// on Close.
//
// # Features
//
//   - Off-heap allocation via mmap (no GC pressure), or 64-byte aligned heap
//     buffers when Config.OffHeap is false
//   - Optional MemoryAcquirer (see package resource) for process-wide
//     backpressure, with a bounded wait per allocation
//   - Per-label accounting so operators can attribute memory to columns
//   - Close reclaims buffers leaked by discarded segments
//
// # Safety
//
// A Buffer's bytes are valid until it is released. Releasing twice, or to an
// arena that did not allocate it, is reported as an error rather than
// corrupting accounting.
package arena
