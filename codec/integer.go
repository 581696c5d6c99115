package codec

import (
	"cmp"
	"encoding/binary"
	"strconv"
	"strings"
)

// Int32 is the codec for 32-bit signed integers (4 bytes, little endian).
type Int32 struct{}

// Name implements Codec.
func (Int32) Name() string { return "int32" }

// Width implements Codec.
func (Int32) Width() int { return 4 }

// Append implements Codec.
func (Int32) Append(dst []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(v))
}

// Decode implements Codec.
func (Int32) Decode(src []byte) int32 {
	return int32(binary.LittleEndian.Uint32(src))
}

// Compare implements Codec.
func (Int32) Compare(a, b int32) int { return cmp.Compare(a, b) }

// RangeCompare implements Codec.
func (Int32) RangeCompare(a, b int32) int { return cmp.Compare(a, b) }

// Parse implements Codec.
func (c Int32) Parse(text string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return 0, &ParseError{Type: c.Name(), Text: text, Err: err}
	}
	return int32(v), nil
}

// Int64 is the codec for 64-bit signed integers (8 bytes, little endian).
type Int64 struct{}

// Name implements Codec.
func (Int64) Name() string { return "int64" }

// Width implements Codec.
func (Int64) Width() int { return 8 }

// Append implements Codec.
func (Int64) Append(dst []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(v))
}

// Decode implements Codec.
func (Int64) Decode(src []byte) int64 {
	return int64(binary.LittleEndian.Uint64(src))
}

// Compare implements Codec.
func (Int64) Compare(a, b int64) int { return cmp.Compare(a, b) }

// RangeCompare implements Codec.
func (Int64) RangeCompare(a, b int64) int { return cmp.Compare(a, b) }

// Parse implements Codec.
func (c Int64) Parse(text string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, &ParseError{Type: c.Name(), Text: text, Err: err}
	}
	return v, nil
}
