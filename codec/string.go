package codec

import "strings"

// String is the variable-width codec for UTF-8 strings, stored as raw bytes
// and ordered byte-wise.
type String struct{}

// Name implements Codec.
func (String) Name() string { return "string" }

// Width implements Codec.
func (String) Width() int { return 0 }

// Append implements Codec.
func (String) Append(dst []byte, v string) []byte {
	return append(dst, v...)
}

// Decode implements Codec. The result does not alias src.
func (String) Decode(src []byte) string {
	return string(src)
}

// Compare implements Codec.
func (String) Compare(a, b string) int { return strings.Compare(a, b) }

// RangeCompare implements Codec.
func (String) RangeCompare(a, b string) int { return strings.Compare(a, b) }

// Parse implements Codec. Every text is a valid string.
func (String) Parse(text string) (string, error) {
	return text, nil
}
