package hashindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hupe1980/memdict/arena"
	"github.com/hupe1980/memdict/internal/container"
	"github.com/hupe1980/memdict/internal/conv"
	"github.com/hupe1980/memdict/internal/hash"
	"github.com/hupe1980/memdict/internal/mem"
)

const (
	// DefaultSlotsPerBucket is the bucket width used when none is configured.
	DefaultSlotsPerBucket = 3
	// DefaultMaxOverflow is the overflow bound used when none is configured.
	DefaultMaxOverflow = 1000
)

// maxBuckets keeps a level addressable on 32-bit platforms.
const maxBuckets = 1 << 26

var (
	// ErrClosed is returned when inserting into a closed index.
	ErrClosed = errors.New("hashindex: closed")
	// ErrInvalidID is returned for the one ID that cannot be packed.
	ErrInvalidID = errors.New("hashindex: invalid id")
	// ErrGrow wraps an allocation failure while adding a level. The entry
	// being inserted is still recorded, in the overflow list.
	ErrGrow = errors.New("hashindex: grow failed")
)

// Placement reports where Insert recorded an entry.
type Placement int

const (
	// InTable means the entry took a free slot in the newest level.
	InTable Placement = iota
	// InOverflow means the entry's bucket was full and it was appended to
	// the overflow list.
	InOverflow
	// InNewLevel means a larger level was added and the entry went there.
	InNewLevel
)

type overflowEntry struct {
	hash uint64
	id   uint32
}

// Stats describes table occupancy.
type Stats struct {
	Buckets        int // across all levels
	Levels         int
	SlotsPerBucket int
	Occupied       int
	Overflow       int
}

type level struct {
	buf   *arena.Buffer
	slots []uint64
	mask  uint64
}

func (lv *level) buckets() int {
	return int(lv.mask + 1)
}

// find looks for a matching ID in the bucket of h. full reports that the
// bucket had no free slot.
func (lv *level) find(h uint64, slotsPerBucket int, match func(uint32) bool) (id uint32, ok, full bool) {
	tag := hash.Tag(h)
	base := int(hash.Bucket(h, lv.mask)) * slotsPerBucket
	for i := range slotsPerBucket {
		e := atomic.LoadUint64(&lv.slots[base+i])
		if e == 0 {
			return 0, false, false
		}
		if uint32(e>>32) != tag {
			continue
		}
		if id := uint32(e) - 1; match(id) {
			return id, true, false
		}
	}
	return 0, false, true
}

func (lv *level) put(h uint64, id uint32, slotsPerBucket int) bool {
	base := int(hash.Bucket(h, lv.mask)) * slotsPerBucket
	for i := range slotsPerBucket {
		p := &lv.slots[base+i]
		if atomic.LoadUint64(p) == 0 {
			atomic.StoreUint64(p, pack(hash.Tag(h), id))
			return true
		}
	}
	return false
}

// table is one published generation: the levels, oldest first, and the
// overflow list that belongs to the newest level.
type table struct {
	levels   []*level
	overflow *container.AppendLog[overflowEntry]
}

// Index is a multi-level bucket table with a bounded overflow list.
type Index struct {
	alloc          arena.Allocator
	label          string
	slotsPerBucket int
	maxOverflow    int
	growAt         int // writer-owned

	current  atomic.Pointer[table]
	occupied atomic.Int64
	closed   atomic.Bool
}

// New allocates a first level with the next power of two >= estimatedCardinality
// buckets of slotsPerBucket entries each. Once the overflow list holds
// maxOverflow entries, the next full bucket adds a level of twice the size.
func New(ctx context.Context, alloc arena.Allocator, label string, estimatedCardinality, slotsPerBucket, maxOverflow int) (*Index, error) {
	if slotsPerBucket <= 0 {
		slotsPerBucket = DefaultSlotsPerBucket
	}
	if maxOverflow <= 0 {
		maxOverflow = DefaultMaxOverflow
	}

	x := &Index{
		alloc:          alloc,
		label:          label,
		slotsPerBucket: slotsPerBucket,
		maxOverflow:    maxOverflow,
		growAt:         maxOverflow,
	}

	lv, err := x.newLevel(ctx, nextPowerOfTwo(min(estimatedCardinality, maxBuckets)))
	if err != nil {
		return nil, err
	}
	x.current.Store(&table{
		levels:   []*level{lv},
		overflow: container.NewAppendLog[overflowEntry](),
	})
	return x, nil
}

func (x *Index) newLevel(ctx context.Context, buckets int) (*level, error) {
	n, err := conv.MulInt(buckets, x.slotsPerBucket)
	if err != nil {
		return nil, err
	}
	size, err := conv.MulInt(n, 8)
	if err != nil {
		return nil, err
	}

	buf, err := x.alloc.Allocate(ctx, size, x.label)
	if err != nil {
		return nil, fmt.Errorf("hashindex: allocate %d buckets: %w", buckets, err)
	}
	return &level{
		buf:   buf,
		slots: mem.Uint64s(buf.Bytes()),
		mask:  uint64(buckets - 1),
	}, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func pack(tag, id uint32) uint64 {
	return uint64(tag)<<32 | uint64(id+1)
}

// Lookup returns the first ID stored under h for which match reports true.
func (x *Index) Lookup(h uint64, match func(id uint32) bool) (uint32, bool) {
	if x.closed.Load() {
		return 0, false
	}

	t := x.current.Load()
	full := false
	for _, lv := range t.levels {
		id, ok, f := lv.find(h, x.slotsPerBucket, match)
		if ok {
			return id, true
		}
		full = f
	}

	// Overflow entries only come from full buckets of the newest level.
	if !full {
		return 0, false
	}
	for _, e := range t.overflow.All() {
		if e.hash == h && match(e.id) {
			return e.id, true
		}
	}
	return 0, false
}

// Insert records id under h and reports where it went. Insert is not safe
// for concurrent use.
//
// An error wrapping ErrGrow means the entry was recorded in the overflow list
// but the level that should have taken it could not be allocated.
func (x *Index) Insert(ctx context.Context, h uint64, id uint32) (Placement, error) {
	if x.closed.Load() {
		return InTable, ErrClosed
	}
	if id == math.MaxUint32 {
		return InTable, ErrInvalidID
	}

	t := x.current.Load()
	newest := t.levels[len(t.levels)-1]
	if newest.put(h, id, x.slotsPerBucket) {
		x.occupied.Add(1)
		return InTable, nil
	}

	e := overflowEntry{hash: h, id: id}
	if t.overflow.Len() < x.growAt || newest.buckets() >= maxBuckets {
		return InOverflow, x.spill(t, e)
	}

	grown, err := x.grow(ctx, t, e)
	if grown {
		return InNewLevel, nil
	}

	// Back off so a table that cannot shed its overflow is not rebuilt on
	// every insert.
	x.growAt = max(2*x.growAt, t.overflow.Len()+1)
	if serr := x.spill(t, e); serr != nil {
		return InOverflow, errors.Join(serr, err)
	}
	if err != nil {
		return InOverflow, fmt.Errorf("%w: %w", ErrGrow, err)
	}
	return InOverflow, nil
}

func (x *Index) spill(t *table, e overflowEntry) error {
	if _, err := t.overflow.Append(e); err != nil {
		return fmt.Errorf("hashindex: overflow: %w", err)
	}
	return nil
}

// grow adds a level of at least twice the newest level's buckets, sized so
// every entry so far would fit at half load, moves the overflow entries and e
// into it, and publishes the new generation. It reports false, releasing the
// level, when the level would not take most of those entries, as happens
// when they share one hash.
func (x *Index) grow(ctx context.Context, t *table, e overflowEntry) (bool, error) {
	newest := t.levels[len(t.levels)-1]
	pending := t.overflow.Len() + 1
	total := int(x.occupied.Load()) + pending
	wanted := nextPowerOfTwo((2*total + x.slotsPerBucket - 1) / x.slotsPerBucket)

	lv, err := x.newLevel(ctx, min(max(2*newest.buckets(), wanted), maxBuckets))
	if err != nil {
		return false, err
	}

	overflow := container.NewAppendLog[overflowEntry]()
	placed := 0
	place := func(pe overflowEntry) {
		if lv.put(pe.hash, pe.id, x.slotsPerBucket) {
			placed++
			return
		}
		// Cannot fail: the new list is shorter than the old one.
		_, _ = overflow.Append(pe)
	}
	for _, pe := range t.overflow.All() {
		place(pe)
	}
	place(e)

	if 2*overflow.Len() >= pending || placed <= x.slotsPerBucket {
		return false, x.alloc.Release(lv.buf)
	}

	levels := append(t.levels[:len(t.levels):len(t.levels)], lv)
	x.current.Store(&table{levels: levels, overflow: overflow})
	x.occupied.Add(int64(placed))
	x.growAt = x.maxOverflow
	return true, nil
}

// OverflowLen returns the number of entries in the overflow list.
func (x *Index) OverflowLen() int {
	return x.current.Load().overflow.Len()
}

// BytesReserved returns the size of every level.
func (x *Index) BytesReserved() int64 {
	if x.closed.Load() {
		return 0
	}
	var n int64
	for _, lv := range x.current.Load().levels {
		n += int64(lv.buf.Size())
	}
	return n
}

// OverflowBytes returns the heap bytes held by overflow segments.
func (x *Index) OverflowBytes() int64 {
	if x.closed.Load() {
		return 0
	}
	const entrySize = 16
	return int64(x.current.Load().overflow.Segments()) * int64(container.SegmentSize()) * entrySize
}

// Stats returns table occupancy.
func (x *Index) Stats() Stats {
	t := x.current.Load()
	buckets := 0
	for _, lv := range t.levels {
		buckets += lv.buckets()
	}
	return Stats{
		Buckets:        buckets,
		Levels:         len(t.levels),
		SlotsPerBucket: x.slotsPerBucket,
		Occupied:       int(x.occupied.Load()),
		Overflow:       t.overflow.Len(),
	}
}

// Close releases every level. A second call returns ErrClosed.
func (x *Index) Close() error {
	if x.closed.Swap(true) {
		return ErrClosed
	}

	t := x.current.Swap(&table{overflow: container.NewAppendLog[overflowEntry]()})
	x.occupied.Store(0)

	var errs []error
	for _, lv := range t.levels {
		if err := x.alloc.Release(lv.buf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
