// Package valuestore provides dictionary-ID-indexed value storage on arena buffers.
//
// # Architecture
//
// FixedWidth keeps one fixed-size slot per dictionary ID across a list of
// arena buffers. The first buffer holds the next power of two at or above the
// cardinality estimate; every further buffer is as large as all previous ones
// combined, so capacity doubles per growth step and existing slots never move:
//
//	buffer:   0          1          2                    3
//	ids:    [0 .. c)   [c .. 2c)  [2c .. 4c)           [4c .. 8c)
//
// VarWidth stores variable-length values (strings) by appending their bytes to
// arena pages and keeping a 12-byte (page, offset, length) slot per ID in a
// FixedWidth store.
//
// # Concurrency
//
// One writer, many readers. The writer publishes a grown buffer list before
// writing into it, and publishes the new length only after the slot bytes are
// written. A reader that observes length n therefore sees every slot below n
// fully written. Slots are immutable once written.
//
// Close must not run concurrently with readers or the writer.
package valuestore
