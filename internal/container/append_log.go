// Package container implements container data structures.
package container

import (
	"errors"
	"iter"
	"math"
	"sync/atomic"
)

const (
	// segmentBits determines the size of each segment.
	// 10 bits = 1024 items per segment.
	segmentBits = 10
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

// ErrFull is returned by Append once the log holds math.MaxUint32 items.
var ErrFull = errors.New("container: append log full")

type segment[T any] [segmentSize]T

// AppendLog is an append-only sequence with one writer and lock-free readers.
//
// Append writes the item before it publishes the new length, and segments
// never move once allocated, so readers see a consistent prefix while the
// writer keeps appending. The zero value is an empty log.
type AppendLog[T any] struct {
	segments atomic.Pointer[[]*segment[T]]
	length   atomic.Uint32
}

// NewAppendLog creates an empty log.
func NewAppendLog[T any]() *AppendLog[T] {
	return &AppendLog[T]{}
}

// Append adds v and returns its position. Append is not safe for concurrent
// use; readers may run alongside it.
func (l *AppendLog[T]) Append(v T) (int, error) {
	n := l.length.Load()
	if n == math.MaxUint32 {
		return 0, ErrFull
	}

	var segs []*segment[T]
	if p := l.segments.Load(); p != nil {
		segs = *p
	}

	segIdx := int(n >> segmentBits)
	if segIdx == len(segs) {
		// Copy so readers holding the old slice header stay valid.
		grown := append(segs[:len(segs):len(segs)], new(segment[T]))
		l.segments.Store(&grown)
		segs = grown
	}

	segs[segIdx][n&segmentMask] = v
	l.length.Store(n + 1)
	return int(n), nil
}

// Len returns the published length.
func (l *AppendLog[T]) Len() int {
	return int(l.length.Load())
}

// At returns the item at position i if it has been published.
func (l *AppendLog[T]) At(i int) (T, bool) {
	if i < 0 || i >= l.Len() {
		var zero T
		return zero, false
	}
	segs := *l.segments.Load()
	return segs[i>>segmentBits][i&segmentMask], true
}

// All yields the items published when iteration starts, in append order.
func (l *AppendLog[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		n := l.Len()
		if n == 0 {
			return
		}
		segs := *l.segments.Load()
		for i := range n {
			if !yield(i, segs[i>>segmentBits][i&segmentMask]) {
				return
			}
		}
	}
}

// Segments returns the number of allocated segments.
func (l *AppendLog[T]) Segments() int {
	p := l.segments.Load()
	if p == nil {
		return 0
	}
	return len(*p)
}

// SegmentSize is the number of items held by one segment.
func SegmentSize() int {
	return segmentSize
}
