// Package codec binds dictionaries to concrete value representations.
//
// A Codec knows how one value type is laid out in a dictionary's value store
// (fixed width or variable width), how two values are ordered, and how the
// textual form used by ingestion and predicate bounds is parsed.
//
// Encodings are canonical: two values are the same dictionary entry if and
// only if their encodings are byte-equal. Float codecs collapse every NaN
// payload into one canonical NaN to keep that property.
package codec

import (
	"errors"
	"fmt"
)

// ErrParse is returned when text cannot be parsed into a codec's value type.
var ErrParse = errors.New("codec: parse error")

// Codec encodes, decodes, orders and parses values of type T.
// Implementations must be safe for concurrent use.
type Codec[T any] interface {
	// Name returns a stable type name ("float32", "string", ...).
	Name() string

	// Width returns the encoded size in bytes, or 0 for variable-width values.
	Width() int

	// Append appends the canonical encoding of v to dst.
	Append(dst []byte, v T) []byte

	// Decode decodes a value previously produced by Append.
	Decode(src []byte) T

	// Compare orders a and b: negative if a < b, zero if equal, positive if a > b.
	// The order is total and tells every distinct encoding apart, so it is
	// the order used for sorting.
	Compare(a, b T) int

	// RangeCompare orders a and b for interval predicates. It agrees with
	// Compare except that values equal as numbers compare equal (float -0
	// and +0).
	RangeCompare(a, b T) int

	// Parse parses the textual form of a value.
	Parse(text string) (T, error)
}

// Number is the set of numeric value types with fixed-width codecs.
type Number interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// ParseError reports text that could not be parsed.
type ParseError struct {
	Type string
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec: cannot parse %q as %s: %v", e.Text, e.Type, e.Err)
	}
	return fmt.Sprintf("codec: cannot parse %q as %s", e.Text, e.Type)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error { return e.Err }

// Names returns the names of the built-in codecs.
func Names() []string {
	return []string{
		Int32{}.Name(),
		Int64{}.Name(),
		Float32{}.Name(),
		Float64{}.Name(),
		String{}.Name(),
	}
}
