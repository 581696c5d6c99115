package valuestore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hupe1980/memdict/arena"
)

const (
	// slotWidth is the size of a (page, offset, length) slot.
	slotWidth = 12

	// DefaultPageSize is the default size of a value page (64KB).
	DefaultPageSize = 64 * 1024
)

// VarWidth stores variable-length values in append-only arena pages.
type VarWidth struct {
	slots    *FixedWidth
	alloc    arena.Allocator
	label    string
	pageSize int

	pages     atomic.Pointer[[]*arena.Buffer]
	pageOff   int // writer-owned; next free byte in the last page
	dataBytes atomic.Int64
	reserved  atomic.Int64
	closed    atomic.Bool
}

// NewVarWidth creates a variable-width store. Slots are sized for
// initialCapacity IDs; value pages are allocated on demand.
func NewVarWidth(ctx context.Context, alloc arena.Allocator, label string, initialCapacity, pageSize int) (*VarWidth, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	slots, err := NewFixedWidth(ctx, alloc, label+"/slots", slotWidth, initialCapacity)
	if err != nil {
		return nil, err
	}

	s := &VarWidth{
		slots:    slots,
		alloc:    alloc,
		label:    label,
		pageSize: pageSize,
	}
	empty := make([]*arena.Buffer, 0, 8)
	s.pages.Store(&empty)
	return s, nil
}

// Len implements Store.
func (s *VarWidth) Len() int {
	return s.slots.Len()
}

// Capacity implements Store.
func (s *VarWidth) Capacity() int {
	return s.slots.Capacity()
}

// Get implements Store.
func (s *VarWidth) Get(id uint32) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	slot, err := s.slots.Get(id)
	if err != nil {
		return nil, err
	}

	page := binary.LittleEndian.Uint32(slot[0:4])
	off := int(binary.LittleEndian.Uint32(slot[4:8]))
	n := int(binary.LittleEndian.Uint32(slot[8:12]))
	if n == 0 {
		return []byte{}, nil
	}

	pages := *s.pages.Load()
	return pages[page].Bytes()[off : off+n : off+n], nil
}

// Set implements Store.
func (s *VarWidth) Set(ctx context.Context, id uint32, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if uint64(len(value)) > math.MaxUint32 {
		return fmt.Errorf("%w: value of %d bytes", ErrCapacityExceeded, len(value))
	}

	var slot [slotWidth]byte
	if len(value) > 0 {
		page, off, err := s.reserve(ctx, len(value))
		if err != nil {
			return err
		}
		pages := *s.pages.Load()
		copy(pages[page].Bytes()[off:], value)

		binary.LittleEndian.PutUint32(slot[0:4], uint32(page))
		binary.LittleEndian.PutUint32(slot[4:8], uint32(off))
		binary.LittleEndian.PutUint32(slot[8:12], uint32(len(value)))
	}

	// The slot store publishes the ID after the slot is written.
	if err := s.slots.Set(ctx, id, slot[:]); err != nil {
		return err
	}
	s.dataBytes.Add(int64(len(value)))
	return nil
}

// reserve finds room for n bytes, opening a new page when the last one is full.
func (s *VarWidth) reserve(ctx context.Context, n int) (int, int, error) {
	pages := *s.pages.Load()
	if len(pages) > 0 {
		last := pages[len(pages)-1]
		if s.pageOff+n <= last.Size() {
			off := s.pageOff
			s.pageOff += n
			return len(pages) - 1, off, nil
		}
	}

	if uint64(len(pages)) >= math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: too many pages", ErrCapacityExceeded)
	}

	size := max(s.pageSize, n)
	buf, err := s.alloc.Allocate(ctx, size, s.label+"/pages")
	if err != nil {
		return 0, 0, err
	}

	next := make([]*arena.Buffer, len(pages), len(pages)+1)
	copy(next, pages)
	next = append(next, buf)
	s.pages.Store(&next)
	s.reserved.Add(int64(size))

	s.pageOff = n
	return len(next) - 1, 0, nil
}

// BytesUsed implements Store: value bytes plus slot bytes.
func (s *VarWidth) BytesUsed() int64 {
	return s.dataBytes.Load() + s.slots.BytesUsed()
}

// DataBytes returns the total length of all stored values.
func (s *VarWidth) DataBytes() int64 {
	return s.dataBytes.Load()
}

// BytesReserved implements Store.
func (s *VarWidth) BytesReserved() int64 {
	return s.reserved.Load() + s.slots.BytesReserved()
}

// Close implements Store. A second call returns ErrClosed.
func (s *VarWidth) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}

	pages := *s.pages.Load()
	empty := make([]*arena.Buffer, 0)
	s.pages.Store(&empty)
	s.reserved.Store(0)
	s.dataBytes.Store(0)

	var errs []error
	if err := s.slots.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, buf := range pages {
		if err := s.alloc.Release(buf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
