// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between Go's platform-dependent int and the fixed-width
// types used for dictionary IDs (uint32) and byte accounting (int64).
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices bounded by a uint32 length), use direct type casts instead.
package conv
