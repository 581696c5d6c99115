package valuestore

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when reading an ID at or beyond the store length.
	ErrOutOfRange = errors.New("valuestore: id out of range")
	// ErrClosed is returned for any operation on a closed store.
	ErrClosed = errors.New("valuestore: closed")
	// ErrWidthMismatch is returned when a value does not match the slot width.
	ErrWidthMismatch = errors.New("valuestore: value width mismatch")
	// ErrCapacityExceeded is returned when the ID space or a buffer size would overflow.
	ErrCapacityExceeded = errors.New("valuestore: capacity exceeded")
	// ErrNotNext is returned when Set is called with an ID other than Len().
	ErrNotNext = errors.New("valuestore: id is not the next id")
)

// OutOfRangeError reports an ID read beyond the published length.
type OutOfRangeError struct {
	ID     uint32
	Length int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("valuestore: id %d out of range [0, %d)", e.ID, e.Length)
}

// Is reports whether target is ErrOutOfRange.
func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// Store is the dictionary-ID-indexed value storage.
//
// Callers should assume returned slices alias arena memory: they are valid
// until Close and must not be modified.
type Store interface {
	// Len returns the number of published IDs.
	Len() int
	// Get returns the encoded value at id.
	Get(id uint32) ([]byte, error)
	// Set writes the value for id, which must equal Len(). The ID is published
	// only after the value is fully written. Set is not safe for concurrent use.
	Set(ctx context.Context, id uint32, value []byte) error
	// Capacity returns the number of IDs addressable without growing.
	Capacity() int
	// BytesUsed returns the bytes occupied by published values.
	BytesUsed() int64
	// BytesReserved returns the bytes held from the allocator.
	BytesReserved() int64
	// Close releases every buffer back to the allocator.
	Close() error
}
