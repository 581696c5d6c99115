package memdict

import (
	"github.com/hupe1980/memdict/arena"
	"github.com/hupe1980/memdict/codec"
)

// NewFloat32 creates a dictionary of 32-bit floats.
func NewFloat32(alloc arena.Allocator, cfg Config, opts ...Option) (*Dictionary[float32], error) {
	return New[float32](alloc, codec.Float32{}, cfg, opts...)
}

// NewFloat64 creates a dictionary of 64-bit floats.
func NewFloat64(alloc arena.Allocator, cfg Config, opts ...Option) (*Dictionary[float64], error) {
	return New[float64](alloc, codec.Float64{}, cfg, opts...)
}

// NewInt32 creates a dictionary of 32-bit integers.
func NewInt32(alloc arena.Allocator, cfg Config, opts ...Option) (*Dictionary[int32], error) {
	return New[int32](alloc, codec.Int32{}, cfg, opts...)
}

// NewInt64 creates a dictionary of 64-bit integers.
func NewInt64(alloc arena.Allocator, cfg Config, opts ...Option) (*Dictionary[int64], error) {
	return New[int64](alloc, codec.Int64{}, cfg, opts...)
}

// NewString creates a dictionary of strings.
func NewString(alloc arena.Allocator, cfg Config, opts ...Option) (*Dictionary[string], error) {
	return New[string](alloc, codec.String{}, cfg, opts...)
}

// Float64Value returns the value with the given ID widened to float64.
func Float64Value[T codec.Number](d *Dictionary[T], id uint32) (float64, error) {
	v, err := d.Get(id)
	if err != nil {
		return 0, err
	}
	return float64(v), nil
}

// Int64Value returns the value with the given ID converted to int64.
// Floats are truncated toward zero.
func Int64Value[T codec.Number](d *Dictionary[T], id uint32) (int64, error) {
	v, err := d.Get(id)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}
