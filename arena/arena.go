package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/memdict/internal/mem"
	"github.com/hupe1980/memdict/internal/mmap"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

// Allocator grants and reclaims buffers.
//
// label is an opaque diagnostic tag (typically column name and purpose) used
// for accounting only.
type Allocator interface {
	Allocate(ctx context.Context, size int, label string) (*Buffer, error)
	Release(buf *Buffer) error
}

var (
	// ErrAllocationFailed is returned when an allocation cannot be satisfied.
	ErrAllocationFailed = errors.New("arena: allocation failed")
	// ErrClosed is returned when the arena has been closed.
	ErrClosed = errors.New("arena: closed")
	// ErrInvalidSize is returned for non-positive allocation sizes.
	ErrInvalidSize = errors.New("arena: invalid size")
	// ErrReleased is returned when a buffer is released twice.
	ErrReleased = errors.New("arena: buffer already released")
	// ErrForeignBuffer is returned when a buffer is released to an arena that did not allocate it.
	ErrForeignBuffer = errors.New("arena: buffer belongs to another arena")
)

const (
	// DefaultAcquireTimeout bounds how long an allocation waits on the MemoryAcquirer
	// when the caller's context carries no deadline.
	DefaultAcquireTimeout = 100 * time.Millisecond
)

// Config configures an Arena.
type Config struct {
	// OffHeap selects anonymous memory mappings (true) or aligned heap buffers (false).
	OffHeap bool `yaml:"off_heap"`

	// AcquireTimeout bounds the wait on the MemoryAcquirer when ctx has no deadline.
	// If 0, DefaultAcquireTimeout is used.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

// DefaultConfig returns an off-heap configuration.
func DefaultConfig() Config {
	return Config{
		OffHeap:        true,
		AcquireTimeout: DefaultAcquireTimeout,
	}
}

// Stats tracks arena usage.
//
// Note on semantics:
//   - BytesOutstanding: bytes currently held by live buffers
//   - BuffersOutstanding: live buffer count
//   - TotalAllocs/TotalReleases: cumulative counts
//   - FailedAllocs: allocations refused by the acquirer or the OS
type Stats struct {
	BytesOutstanding   int64
	BuffersOutstanding int64
	TotalAllocs        uint64
	TotalReleases      uint64
	FailedAllocs       uint64
}

type atomicStats struct {
	BytesOutstanding   atomic.Int64
	BuffersOutstanding atomic.Int64
	TotalAllocs        atomic.Uint64
	TotalReleases      atomic.Uint64
	FailedAllocs       atomic.Uint64
}

// Buffer is a fixed-size region granted by an Arena.
type Buffer struct {
	data     []byte
	mapping  *mmap.Mapping // nil for heap buffers
	label    string
	owner    *Arena
	seq      uint64
	released atomic.Bool
}

// Bytes returns the buffer's memory. It is zero-filled on allocation and
// valid until the buffer is released.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Label returns the label the buffer was allocated with.
func (b *Buffer) Label() string {
	return b.label
}

// Arena is the default Allocator.
type Arena struct {
	cfg      Config
	acquirer MemoryAcquirer

	mu      sync.Mutex
	live    map[uint64]*Buffer
	byLabel map[string]int64
	nextSeq uint64

	stats  atomicStats
	closed atomic.Bool
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates a new Arena.
func New(cfg Config, opts ...Option) *Arena {
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}

	a := &Arena{
		cfg:     cfg,
		live:    make(map[uint64]*Buffer),
		byLabel: make(map[string]int64),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Allocate grants a zero-filled buffer of exactly size bytes.
func (a *Arena) Allocate(ctx context.Context, size int, label string) (*Buffer, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	size64 := int64(size)
	if a.acquirer != nil {
		// Check for timeout in context or use the configured short timeout
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.cfg.AcquireTimeout)
			defer cancel()
		}
		if err := a.acquirer.AcquireMemory(ctx, size64); err != nil {
			a.stats.FailedAllocs.Add(1)
			return nil, fmt.Errorf("%w: %d bytes for %q: %w", ErrAllocationFailed, size, label, err)
		}
	}

	buf := &Buffer{label: label, owner: a}
	if a.cfg.OffHeap {
		mapping, err := mmap.MapAnon(size)
		if err != nil {
			if a.acquirer != nil {
				a.acquirer.ReleaseMemory(size64)
			}
			a.stats.FailedAllocs.Add(1)
			return nil, fmt.Errorf("%w: failed to map anonymous memory for %q: %w", ErrAllocationFailed, label, err)
		}
		buf.mapping = mapping
		buf.data = mapping.Bytes()
	} else {
		buf.data = mem.AllocAligned(size)
	}

	a.mu.Lock()
	if a.closed.Load() {
		a.mu.Unlock()
		a.free(buf)
		return nil, ErrClosed
	}
	a.nextSeq++
	buf.seq = a.nextSeq
	a.live[buf.seq] = buf
	a.byLabel[label] += size64
	a.mu.Unlock()

	a.stats.TotalAllocs.Add(1)
	a.stats.BuffersOutstanding.Add(1)
	a.stats.BytesOutstanding.Add(size64)

	return buf, nil
}

// Release returns buf to the arena. The buffer's bytes must not be touched afterwards.
func (a *Arena) Release(buf *Buffer) error {
	if buf == nil {
		return nil
	}
	if buf.owner != a {
		return ErrForeignBuffer
	}
	if buf.released.Swap(true) {
		return ErrReleased
	}

	a.mu.Lock()
	_, ok := a.live[buf.seq]
	if ok {
		delete(a.live, buf.seq)
		a.untrackLabelLocked(buf)
	}
	a.mu.Unlock()

	if !ok {
		// Already reclaimed by Close.
		return ErrReleased
	}

	a.stats.TotalReleases.Add(1)
	a.stats.BuffersOutstanding.Add(-1)
	a.stats.BytesOutstanding.Add(-int64(len(buf.data)))

	return a.free(buf)
}

func (a *Arena) untrackLabelLocked(buf *Buffer) {
	remaining := a.byLabel[buf.label] - int64(len(buf.data))
	if remaining <= 0 {
		delete(a.byLabel, buf.label)
		return
	}
	a.byLabel[buf.label] = remaining
}

// free unmaps buf and returns its bytes to the acquirer.
func (a *Arena) free(buf *Buffer) error {
	size := int64(len(buf.data))
	var err error
	if buf.mapping != nil {
		err = buf.mapping.Close()
	}
	buf.data = nil
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(size)
	}
	return err
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		BytesOutstanding:   a.stats.BytesOutstanding.Load(),
		BuffersOutstanding: a.stats.BuffersOutstanding.Load(),
		TotalAllocs:        a.stats.TotalAllocs.Load(),
		TotalReleases:      a.stats.TotalReleases.Load(),
		FailedAllocs:       a.stats.FailedAllocs.Load(),
	}
}

// LabelUsage returns a copy of the outstanding bytes per label.
func (a *Arena) LabelUsage() map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]int64, len(a.byLabel))
	for k, v := range a.byLabel {
		out[k] = v
	}
	return out
}

// Close reclaims every outstanding buffer and rejects further allocations.
//
// IMPORTANT: Do NOT call Close while buffers are still in use. Buffers
// reclaimed here become invalid; a later Release on them returns ErrReleased.
func (a *Arena) Close() error {
	if a.closed.Swap(true) {
		return ErrClosed
	}

	a.mu.Lock()
	live := a.live
	a.live = make(map[uint64]*Buffer)
	a.byLabel = make(map[string]int64)
	a.mu.Unlock()

	var errs []error
	for _, buf := range live {
		a.stats.TotalReleases.Add(1)
		a.stats.BuffersOutstanding.Add(-1)
		a.stats.BytesOutstanding.Add(-int64(len(buf.data)))
		if err := a.free(buf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Arena) String() string {
	stats := a.Stats()
	return fmt.Sprintf(
		"Arena{buffers: %d, outstanding: %.2f MB, allocs: %d, releases: %d, failed: %d}",
		stats.BuffersOutstanding,
		float64(stats.BytesOutstanding)/(1024*1024),
		stats.TotalAllocs,
		stats.TotalReleases,
		stats.FailedAllocs,
	)
}
