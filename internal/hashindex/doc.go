// Package hashindex maps value hashes to dictionary IDs.
//
// The index is a list of levels, each a power-of-two array of buckets
// allocated from an arena buffer. Each bucket holds SlotsPerBucket packed
// 64-bit entries:
//
//	entry = tag<<32 | (id+1)
//
// where tag is the high half of the value hash and 0 marks an empty slot.
// Slots in a bucket fill in order and are never cleared, so the first empty
// slot ends the search of that level.
//
// New entries go to the newest level. An entry whose bucket is full is
// appended to an overflow list that belongs to the newest level. Once that
// list reaches its bound, the next full bucket adds a level of twice the
// size and the overflow entries move into it, so the list stays short and
// lookups touch one bucket per level plus, only when the newest bucket is
// full, the overflow list. Older levels are never rehashed or released
// before Close.
//
// Hashes only narrow the search. Callers confirm a candidate ID by comparing
// the stored value, so colliding values resolve to distinct IDs.
//
// One writer, many readers: slots are read and written atomically, a new
// level is filled before the generation holding it is published, and
// overflow entries are written before the list length is published.
package hashindex
