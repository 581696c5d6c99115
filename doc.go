// Package memdict provides mutable, off-heap dictionary encoding for columns
// that are still being ingested.
//
// A Dictionary maps every distinct value of a column to a dense uint32 ID in
// first-seen order and keeps the values in buffers borrowed from an
// arena.Allocator, so a segment holding millions of distinct values adds
// almost nothing to the garbage collector's work. Query code reads the same
// dictionary while ingestion continues.
//
// # Quick Start
//
//	a := arena.New(arena.DefaultConfig())
//	defer a.Close()
//
//	cfg := memdict.DefaultConfig()
//	cfg.AllocationContext = "trades.price"
//
//	d, _ := memdict.NewFloat32(a, cfg)
//	defer d.Close()
//
//	d.Index(3.0)                        // id 0
//	d.IndexValues([]float32{1, 5, 3})   // ids 1, 2, 0
//	id, ok, _ := d.IndexOfText("5")     // 2, true
//	in, _ := d.InRange("1", "5", id, true, false) // false
//	sorted, _ := d.SortedValues()       // [1 3 5]
//
// # Value Types
//
// Built-in constructors cover float32, float64, int32, int64 and string
// (NewFloat32 ... NewString). New accepts any codec.Codec. Floats use a
// total order: -Inf < ... < -0 < +0 < ... < +Inf < NaN, and every NaN
// payload is the same dictionary entry.
//
// # Concurrency
//
// One writer and any number of lock-free readers. Index and IndexValues
// serialize internally. A reader that observes Len() == n can read every ID
// below n. Close is exclusive: no reader or writer may be active.
//
// # Memory
//
// The first value buffer and the identity index are sized from
// Config.EstimatedCardinality. The value store doubles as it grows. The
// identity index is a stack of fixed bucket levels: collisions beyond a
// bucket's inline slots go to an overflow list, and once that list reaches
// Config.MaxOverflowSize a new level of at least twice the size absorbs it.
// Levels are never rehashed. If a new level cannot be allocated the list
// keeps growing, is scanned linearly, and the condition is logged.
//
// Every read returns ErrClosed after Close, including Len and Stats.
//
// Allocation goes through arena.Allocator. Pair an arena with a
// resource.Controller to bound memory across dictionaries.
package memdict
