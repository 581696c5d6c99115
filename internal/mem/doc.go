// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides 64-byte aligned heap allocation (cache-line friendly) and typed
// views over aligned byte buffers, used when off-heap mappings are disabled.
package mem
