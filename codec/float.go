package codec

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	canonicalNaN32 = 0x7FC00000
	canonicalNaN64 = 0x7FF8000000000000
)

// Float32 is the codec for 32-bit floats (4 bytes, little endian).
//
// Ordering: -Inf < ... < -0 < +0 < ... < +Inf < NaN. All NaNs are one value.
// RangeCompare treats -0 and +0 as equal, so both satisfy "x >= 0".
//
// Parse accepts decimal and exponent forms ("1.5", "-2e10"), hex floats
// ("0x1p-2"), "NaN", and "Inf"/"Infinity" with an optional sign, in any
// case. A single trailing 'f', 'F', 'd' or 'D' type suffix ("1.0f") is
// ignored. Surrounding whitespace is trimmed; magnitudes beyond the type's
// range saturate to ±Inf or 0.
type Float32 struct{}

// Name implements Codec.
func (Float32) Name() string { return "float32" }

// Width implements Codec.
func (Float32) Width() int { return 4 }

// Append implements Codec.
func (Float32) Append(dst []byte, v float32) []byte {
	bits := math.Float32bits(v)
	if v != v {
		bits = canonicalNaN32
	}
	return binary.LittleEndian.AppendUint32(dst, bits)
}

// Decode implements Codec.
func (Float32) Decode(src []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(src))
}

// Compare implements Codec.
func (Float32) Compare(a, b float32) int { return compareFloat(a, b) }

// RangeCompare implements Codec.
func (Float32) RangeCompare(a, b float32) int { return rangeCompareFloat(a, b) }

// Parse implements Codec.
func (c Float32) Parse(text string) (float32, error) {
	f, err := parseFloat(c.Name(), text, 32)
	return float32(f), err
}

// Float64 is the codec for 64-bit floats (8 bytes, little endian).
//
// Ordering and the Parse grammar match Float32.
type Float64 struct{}

// Name implements Codec.
func (Float64) Name() string { return "float64" }

// Width implements Codec.
func (Float64) Width() int { return 8 }

// Append implements Codec.
func (Float64) Append(dst []byte, v float64) []byte {
	bits := math.Float64bits(v)
	if v != v {
		bits = canonicalNaN64
	}
	return binary.LittleEndian.AppendUint64(dst, bits)
}

// Decode implements Codec.
func (Float64) Decode(src []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(src))
}

// Compare implements Codec.
func (Float64) Compare(a, b float64) int { return compareFloat(a, b) }

// RangeCompare implements Codec.
func (Float64) RangeCompare(a, b float64) int { return rangeCompareFloat(a, b) }

// Parse implements Codec.
func (c Float64) Parse(text string) (float64, error) {
	return parseFloat(c.Name(), text, 64)
}

func compareFloat[F ~float32 | ~float64](a, b F) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}

	// a == b; only the zeros still need telling apart.
	aNeg, bNeg := math.Signbit(float64(a)), math.Signbit(float64(b))
	switch {
	case aNeg == bNeg:
		return 0
	case aNeg:
		return -1
	default:
		return 1
	}
}

// rangeCompareFloat is compareFloat without the signed-zero tiebreak.
func rangeCompareFloat[F ~float32 | ~float64](a, b F) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN == bNaN:
		return 0
	case aNaN:
		return 1
	default:
		return -1
	}
}

// parseFloat accepts decimal, exponent, hex-float, "NaN" and "Inf" forms.
// Out-of-range magnitudes saturate to ±Inf (or 0) instead of failing.
func parseFloat(typ, text string, bitSize int) (float64, error) {
	s := trimTypeSuffix(strings.TrimSpace(text))
	f, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f, nil
		}
		return 0, &ParseError{Type: typ, Text: text, Err: err}
	}
	return f, nil
}

// trimTypeSuffix drops one float/double suffix that follows a digit or a
// dot ("1.5f", "2D", "0x1p-2f"). "Inf" keeps its 'f'.
func trimTypeSuffix(s string) string {
	if len(s) < 2 {
		return s
	}
	switch s[len(s)-1] {
	case 'f', 'F', 'd', 'D':
		prev := s[len(s)-2]
		if prev >= '0' && prev <= '9' || prev == '.' {
			return s[:len(s)-1]
		}
	}
	return s
}
