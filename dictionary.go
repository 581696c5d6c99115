package memdict

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/memdict/arena"
	"github.com/hupe1980/memdict/codec"
	"github.com/hupe1980/memdict/internal/conv"
	"github.com/hupe1980/memdict/internal/hash"
	"github.com/hupe1980/memdict/internal/hashindex"
	"github.com/hupe1980/memdict/internal/valuestore"
	"golang.org/x/time/rate"
)

// Dictionary is a mutable, append-only dictionary mapping distinct values of
// type T to dense IDs in first-seen order. Values live in allocator buffers.
//
// One goroutine may index at a time (Index and IndexValues serialize on an
// internal mutex); any number of goroutines may read concurrently without
// locks. Close must not run concurrently with any other call.
type Dictionary[T any] struct {
	codec  codec.Codec[T]
	store  valuestore.Store
	index  *hashindex.Index
	cfg    Config
	column string

	ctx     context.Context
	logger  *Logger
	metrics MetricsCollector

	mu           sync.Mutex // serializes writers
	scratch      []byte     // writer-owned encode buffer
	overflowWarn rate.Sometimes

	bounds atomic.Pointer[bounds[T]] // nil until the first value
	closed atomic.Bool
}

type bounds[T any] struct {
	min T
	max T
}

// Stats is a point-in-time snapshot of a dictionary.
type Stats struct {
	Length               int
	Capacity             int
	Buckets              int
	Levels               int
	SlotsPerBucket       int
	OverflowLen          int
	OffHeapBytesUsed     int64
	OffHeapBytesReserved int64
	OverflowHeapBytes    int64
}

// New creates an empty dictionary for the values described by c. Buffers are
// borrowed from alloc and returned on Close.
func New[T any](alloc arena.Allocator, c codec.Codec[T], cfg Config, opts ...Option) (*Dictionary[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	d := &Dictionary[T]{
		codec:        c,
		cfg:          cfg,
		column:       cfg.AllocationContext,
		ctx:          o.ctx,
		logger:       o.logger.WithColumn(cfg.AllocationContext).WithType(c.Name()),
		metrics:      o.metricsCollector,
		overflowWarn: rate.Sometimes{Interval: time.Second},
	}

	var err error
	label := cfg.AllocationContext + "/values"
	if w := c.Width(); w > 0 {
		d.store, err = valuestore.NewFixedWidth(d.ctx, alloc, label, w, cfg.EstimatedCardinality)
		d.scratch = make([]byte, 0, w)
	} else {
		d.store, err = valuestore.NewVarWidth(d.ctx, alloc, label, cfg.EstimatedCardinality, cfg.VarPageSize)
	}
	if err != nil {
		err = translateError(err)
		d.logger.ErrorContext(d.ctx, "value store allocation failed", "error", err)
		return nil, err
	}

	d.index, err = hashindex.New(d.ctx, alloc, cfg.AllocationContext+"/index",
		cfg.EstimatedCardinality, cfg.SlotsPerBucket, cfg.MaxOverflowSize)
	if err != nil {
		_ = d.store.Close()
		err = translateError(err)
		d.logger.ErrorContext(d.ctx, "identity index allocation failed", "error", err)
		return nil, err
	}

	st := d.index.Stats()
	d.logger.LogCreate(d.ctx, st.Buckets, st.SlotsPerBucket, d.store.Capacity())
	return d, nil
}

// Index assigns an ID to v (or returns its existing one) and folds v into
// the running min/max.
func (d *Dictionary[T]) Index(v T) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed.Load() {
		return 0, ErrClosed
	}
	return d.indexOne(v)
}

// IndexValues indexes each element of a multi-valued cell in order and
// returns the ID of each element. Repeated elements share an ID.
// On error, the IDs assigned so far remain valid.
func (d *Dictionary[T]) IndexValues(vs []T) ([]uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed.Load() {
		return nil, ErrClosed
	}

	ids := make([]uint32, 0, len(vs))
	for _, v := range vs {
		id, err := d.indexOne(v)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (d *Dictionary[T]) indexOne(v T) (uint32, error) {
	start := time.Now()
	id, added, err := d.indexValue(v)
	if err == nil {
		d.updateMinMax(v)
	}
	d.metrics.RecordIndex(d.column, added, time.Since(start), err)
	return id, err
}

// indexValue returns the ID of v, assigning the next one on a miss.
// The caller holds d.mu.
func (d *Dictionary[T]) indexValue(v T) (uint32, bool, error) {
	enc := d.codec.Append(d.scratch[:0], v)
	d.scratch = enc

	h := hash.Sum64(enc)
	if id, ok := d.index.Lookup(h, d.matcher(enc)); ok {
		return id, false, nil
	}

	n := d.store.Len()
	id, err := conv.IntToUint32(n)
	if err != nil {
		err = translateError(errors.Join(valuestore.ErrCapacityExceeded, err))
		d.logger.LogIndex(d.ctx, n, err)
		return 0, false, err
	}

	reserved := d.store.BytesReserved()

	// Set publishes the new length only after the value bytes are written.
	if err := d.store.Set(d.ctx, id, enc); err != nil {
		err = translateError(err)
		d.logger.LogIndex(d.ctx, n, err)
		return 0, false, err
	}

	if now := d.store.BytesReserved(); now != reserved {
		d.logger.LogGrow(d.ctx, n+1, d.store.Capacity(), now)
		d.metrics.RecordGrow(d.column, now)
	}

	before := d.index.BytesReserved()
	placement, err := d.index.Insert(d.ctx, h, id)
	if errors.Is(err, hashindex.ErrGrow) {
		// The entry is in the overflow list; only the new level is missing.
		d.logger.WarnContext(d.ctx, "identity index grow failed", "error", translateError(err))
		err = nil
	}
	if err != nil {
		err = translateError(err)
		d.logger.LogIndex(d.ctx, n, err)
		return 0, false, err
	}

	switch placement {
	case hashindex.InNewLevel:
		st := d.index.Stats()
		d.logger.LogIndexGrow(d.ctx, st.Levels, st.Buckets, before, d.index.BytesReserved())
		d.metrics.RecordOverflow(d.column, st.Overflow)
	case hashindex.InOverflow:
		ol := d.index.OverflowLen()
		d.metrics.RecordOverflow(d.column, ol)
		if ol > d.cfg.MaxOverflowSize {
			d.overflowWarn.Do(func() {
				d.logger.LogOverflow(d.ctx, ol, d.cfg.MaxOverflowSize)
			})
		}
	}

	return id, true, nil
}

// matcher confirms a hash candidate by comparing canonical encodings.
func (d *Dictionary[T]) matcher(enc []byte) func(uint32) bool {
	return func(id uint32) bool {
		b, err := d.store.Get(id)
		return err == nil && bytes.Equal(b, enc)
	}
}

// updateMinMax publishes new bounds when v extends them. The caller holds d.mu.
func (d *Dictionary[T]) updateMinMax(v T) {
	cur := d.bounds.Load()
	if cur == nil {
		d.bounds.Store(&bounds[T]{min: v, max: v})
		return
	}

	lower := d.codec.Compare(v, cur.min) < 0
	higher := d.codec.Compare(v, cur.max) > 0
	if !lower && !higher {
		return
	}

	next := *cur
	if lower {
		next.min = v
	}
	if higher {
		next.max = v
	}
	d.bounds.Store(&next)
}

// IndexOf returns the ID of v. A miss is not an error: it returns found == false.
func (d *Dictionary[T]) IndexOf(v T) (uint32, bool, error) {
	if d.closed.Load() {
		return 0, false, ErrClosed
	}

	enc := d.codec.Append(nil, v)
	id, ok := d.index.Lookup(hash.Sum64(enc), d.matcher(enc))
	d.metrics.RecordLookup(d.column, ok)
	return id, ok, nil
}

// IndexOfText parses text with the dictionary's codec and looks it up.
func (d *Dictionary[T]) IndexOfText(text string) (uint32, bool, error) {
	if d.closed.Load() {
		return 0, false, ErrClosed
	}

	v, err := d.codec.Parse(text)
	if err != nil {
		return 0, false, translateError(err)
	}
	return d.IndexOf(v)
}

// Get returns the value with the given ID.
func (d *Dictionary[T]) Get(id uint32) (T, error) {
	var zero T
	if d.closed.Load() {
		return zero, ErrClosed
	}

	b, err := d.store.Get(id)
	if err != nil {
		return zero, translateError(err)
	}
	return d.codec.Decode(b), nil
}

// Compare orders the values with IDs a and b by the codec's natural order.
func (d *Dictionary[T]) Compare(a, b uint32) (int, error) {
	va, err := d.Get(a)
	if err != nil {
		return 0, err
	}
	vb, err := d.Get(b)
	if err != nil {
		return 0, err
	}
	return d.codec.Compare(va, vb), nil
}

// Parse parses a textual value or predicate bound.
func (d *Dictionary[T]) Parse(text string) (T, error) {
	var zero T
	if d.closed.Load() {
		return zero, ErrClosed
	}

	v, err := d.codec.Parse(text)
	if err != nil {
		return zero, translateError(err)
	}
	return v, nil
}

// MinValue returns the smallest value indexed so far. ok is false before the
// first value.
func (d *Dictionary[T]) MinValue() (v T, ok bool, err error) {
	if d.closed.Load() {
		return v, false, ErrClosed
	}
	b := d.bounds.Load()
	if b == nil {
		return v, false, nil
	}
	return b.min, true, nil
}

// MaxValue returns the largest value indexed so far. ok is false before the
// first value.
func (d *Dictionary[T]) MaxValue() (v T, ok bool, err error) {
	if d.closed.Load() {
		return v, false, ErrClosed
	}
	b := d.bounds.Load()
	if b == nil {
		return v, false, nil
	}
	return b.max, true, nil
}

// Len returns the number of assigned IDs.
func (d *Dictionary[T]) Len() (int, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	return d.store.Len(), nil
}

// Codec returns the dictionary's codec.
func (d *Dictionary[T]) Codec() codec.Codec[T] {
	return d.codec
}

// AvgValueSize returns the average encoded value size in bytes: the codec
// width for fixed-width types, total bytes over Len for variable-width ones.
func (d *Dictionary[T]) AvgValueSize() (int, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	if w := d.codec.Width(); w > 0 {
		return w, nil
	}

	vs, ok := d.store.(*valuestore.VarWidth)
	if !ok {
		return 0, nil
	}
	n := vs.Len()
	if n == 0 {
		return 0, nil
	}
	return int(vs.DataBytes() / int64(n)), nil
}

// TotalOffHeapMemoryUsed returns the value store usage plus the identity
// index structure.
func (d *Dictionary[T]) TotalOffHeapMemoryUsed() (int64, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}
	return d.offHeapUsed(), nil
}

func (d *Dictionary[T]) offHeapUsed() int64 {
	return d.store.BytesUsed() + d.index.BytesReserved()
}

// Stats returns a snapshot of the dictionary.
func (d *Dictionary[T]) Stats() (Stats, error) {
	if d.closed.Load() {
		return Stats{}, ErrClosed
	}
	is := d.index.Stats()
	return Stats{
		Length:               d.store.Len(),
		Capacity:             d.store.Capacity(),
		Buckets:              is.Buckets,
		Levels:               is.Levels,
		SlotsPerBucket:       is.SlotsPerBucket,
		OverflowLen:          is.Overflow,
		OffHeapBytesUsed:     d.offHeapUsed(),
		OffHeapBytesReserved: d.store.BytesReserved() + d.index.BytesReserved(),
		OverflowHeapBytes:    d.index.OverflowBytes(),
	}, nil
}

// Close releases every buffer back to the allocator. A second call returns
// ErrClosed. Close must not run concurrently with readers or the writer.
func (d *Dictionary[T]) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed.Load() {
		return ErrClosed
	}

	length := d.store.Len()
	used := d.offHeapUsed()
	d.closed.Store(true)

	err := errors.Join(d.store.Close(), d.index.Close())
	d.bounds.Store(nil)
	d.scratch = nil

	d.logger.LogClose(d.ctx, length, used, err)
	d.metrics.RecordClose(d.column, length, used)
	return err
}
