package valuestore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync/atomic"

	"github.com/hupe1980/memdict/arena"
	"github.com/hupe1980/memdict/internal/conv"
)

// maxIDs bounds the ID space to uint32.
const maxIDs int64 = math.MaxUint32 + 1

// maxInitialCapacity clamps cardinality estimates.
const maxInitialCapacity = 1 << 30

// FixedWidth stores one fixed-width slot per ID.
type FixedWidth struct {
	width     int
	firstCap  int  // slots in buffer 0 (power of two)
	firstBits uint // log2(firstCap)

	alloc arena.Allocator
	label string

	// Atomic for lock-free read access
	buffers atomic.Pointer[[]*arena.Buffer]
	length  atomic.Uint32

	capacity int // writer-owned; total slots across buffers
	reserved atomic.Int64
	closed   atomic.Bool
}

// NewFixedWidth creates a store with slots of width bytes and allocates the
// first buffer, sized for the next power of two >= initialCapacity slots
// (estimates above 2^30 are clamped).
func NewFixedWidth(ctx context.Context, alloc arena.Allocator, label string, width, initialCapacity int) (*FixedWidth, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width %d", ErrWidthMismatch, width)
	}

	firstCap := NextPowerOfTwo(min(initialCapacity, maxInitialCapacity))

	s := &FixedWidth{
		width:     width,
		firstCap:  firstCap,
		firstBits: uint(bits.TrailingZeros64(uint64(firstCap))),
		alloc:     alloc,
		label:     label,
	}
	empty := make([]*arena.Buffer, 0, 8)
	s.buffers.Store(&empty)

	if err := s.grow(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(uint64(n-1))
}

// Width returns the slot width in bytes.
func (s *FixedWidth) Width() int {
	return s.width
}

// Len implements Store.
func (s *FixedWidth) Len() int {
	return int(s.length.Load())
}

// Capacity implements Store.
func (s *FixedWidth) Capacity() int {
	bufs := s.buffers.Load()
	n := len(*bufs)
	if n == 0 {
		return 0
	}
	return s.firstCap << (n - 1)
}

// locate maps id to (buffer index, byte offset).
func (s *FixedWidth) locate(id uint32) (int, int) {
	q := uint64(id) >> s.firstBits
	if q == 0 {
		return 0, int(id) * s.width
	}
	b := bits.Len64(q)
	start := uint64(s.firstCap) << (b - 1)
	return b, int(uint64(id)-start) * s.width
}

// Get implements Store.
func (s *FixedWidth) Get(id uint32) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	// Length first: every slot below it is visible once it is observed.
	n := s.length.Load()
	if id >= n {
		return nil, &OutOfRangeError{ID: id, Length: int(n)}
	}
	return s.slot(id), nil
}

func (s *FixedWidth) slot(id uint32) []byte {
	bufs := *s.buffers.Load()
	b, off := s.locate(id)
	end := off + s.width
	return bufs[b].Bytes()[off:end:end]
}

// Set implements Store.
func (s *FixedWidth) Set(ctx context.Context, id uint32, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(value) != s.width {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrWidthMismatch, len(value), s.width)
	}

	if id == math.MaxUint32 {
		return fmt.Errorf("%w: id %d", ErrCapacityExceeded, id)
	}
	if n := s.length.Load(); id != n {
		return fmt.Errorf("%w: set id %d, next id is %d", ErrNotNext, id, n)
	}

	for uint64(id) >= uint64(s.capacity) {
		if err := s.grow(ctx); err != nil {
			return err
		}
	}

	copy(s.slot(id), value)

	// Publish after the write.
	s.length.Store(id + 1)
	return nil
}

// grow appends one buffer, doubling capacity.
func (s *FixedWidth) grow(ctx context.Context) error {
	cur := *s.buffers.Load()

	slots := s.firstCap
	if len(cur) > 0 {
		slots = s.capacity
	}
	if int64(s.capacity)+int64(slots) > maxIDs {
		return fmt.Errorf("%w: %d ids", ErrCapacityExceeded, s.capacity+slots)
	}
	size, err := conv.MulInt(slots, s.width)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCapacityExceeded, err)
	}

	buf, err := s.alloc.Allocate(ctx, size, s.label)
	if err != nil {
		return err
	}

	next := make([]*arena.Buffer, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, buf)

	// Publish the grown list before any slot in it is written.
	s.buffers.Store(&next)
	s.capacity += slots
	s.reserved.Add(int64(size))
	return nil
}

// BytesUsed implements Store.
func (s *FixedWidth) BytesUsed() int64 {
	return int64(s.width) * int64(s.length.Load())
}

// BytesReserved implements Store.
func (s *FixedWidth) BytesReserved() int64 {
	return s.reserved.Load()
}

// Buffers returns the number of arena buffers held.
func (s *FixedWidth) Buffers() int {
	return len(*s.buffers.Load())
}

// Close implements Store. A second call returns ErrClosed.
func (s *FixedWidth) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}

	bufs := *s.buffers.Load()
	empty := make([]*arena.Buffer, 0)
	s.buffers.Store(&empty)
	s.length.Store(0)
	s.capacity = 0
	s.reserved.Store(0)

	var errs []error
	for _, buf := range bufs {
		if err := s.alloc.Release(buf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
