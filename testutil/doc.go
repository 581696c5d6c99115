// Package testutil provides testing utilities for memdict.
//
// This package is intended for use in tests, benchmarks and examples only.
// It provides a deterministic, thread-safe RNG and generators for column
// values with controllable cardinality and skew.
//
// # Column Values
//
//	rng := testutil.NewRNG(seed)
//	prices := rng.Float32Column(10_000, 500)   // 500 distinct values
//	skewed := rng.ZipfColumn(10_000, 1000, 1.2) // few hot values
//	names := rng.StringColumn(1_000, 100, 12)  // 100 distinct strings
//
// Every generator returns the column and can be checked against Distinct.
package testutil
