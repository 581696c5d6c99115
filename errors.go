package memdict

import (
	"errors"
	"fmt"

	"github.com/hupe1980/memdict/arena"
	"github.com/hupe1980/memdict/codec"
	"github.com/hupe1980/memdict/internal/hashindex"
	"github.com/hupe1980/memdict/internal/valuestore"
	"github.com/hupe1980/memdict/resource"
)

var (
	// ErrClosed is returned by every operation on a closed dictionary, and by a second Close.
	ErrClosed = errors.New("memdict: dictionary closed")
	// ErrOutOfRange is returned when reading a dictionary ID >= Len().
	ErrOutOfRange = errors.New("memdict: dictionary id out of range")
	// ErrParse is returned when text cannot be parsed into the dictionary's value type.
	ErrParse = errors.New("memdict: parse error")
	// ErrAllocation is returned when the allocator cannot satisfy a request.
	ErrAllocation = errors.New("memdict: allocation failed")
	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("memdict: invalid config")
)

// ErrIDOutOfRange indicates a read beyond the published length.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrIDOutOfRange struct {
	ID     uint32
	Length int
	cause  error
}

func (e *ErrIDOutOfRange) Error() string {
	return fmt.Sprintf("dictionary id %d out of range [0, %d)", e.ID, e.Length)
}

func (e *ErrIDOutOfRange) Unwrap() error { return e.cause }

// Is reports whether target is ErrOutOfRange.
func (e *ErrIDOutOfRange) Is(target error) bool { return target == ErrOutOfRange }

// ErrParseValue indicates text that could not be parsed as Type.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrParseValue struct {
	Type  string
	Text  string
	cause error
}

func (e *ErrParseValue) Error() string {
	return fmt.Sprintf("cannot parse %q as %s", e.Text, e.Type)
}

func (e *ErrParseValue) Unwrap() error { return e.cause }

// Is reports whether target is ErrParse.
func (e *ErrParseValue) Is(target error) bool { return target == ErrParse }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Usage after close.
	if errors.Is(err, valuestore.ErrClosed) || errors.Is(err, hashindex.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	var oor *valuestore.OutOfRangeError
	if errors.As(err, &oor) {
		return &ErrIDOutOfRange{ID: oor.ID, Length: oor.Length, cause: err}
	}

	var pe *codec.ParseError
	if errors.As(err, &pe) {
		return &ErrParseValue{Type: pe.Type, Text: pe.Text, cause: err}
	}

	// Allocation unification.
	if errors.Is(err, arena.ErrAllocationFailed) ||
		errors.Is(err, arena.ErrClosed) ||
		errors.Is(err, resource.ErrMemoryLimitExceeded) ||
		errors.Is(err, valuestore.ErrCapacityExceeded) {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	return err
}
