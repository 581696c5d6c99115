package testutil

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*(maxVal-minVal)
	}
}

// Float32Column returns n values drawn uniformly from a pool of `distinct`
// values spaced 0.25 apart, starting at -distinct/8.
func (r *RNG) Float32Column(n, distinct int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := -float32(distinct) / 8
	out := make([]float32, n)
	for i := range out {
		out[i] = base + float32(r.rand.Intn(distinct))*0.25
	}
	return out
}

// Int64Column returns n values drawn uniformly from a pool of `distinct`
// values spread across the int64 range.
func (r *RNG) Int64Column(n, distinct int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	step := int64(math.MaxInt64 / int64(distinct))
	out := make([]int64, n)
	for i := range out {
		k := int64(r.rand.Intn(distinct)) - int64(distinct/2)
		out[i] = k * step
	}
	return out
}

const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

// StringColumn returns n strings drawn uniformly from a pool of `distinct`
// random strings with lengths in [1, maxLen].
func (r *RNG) StringColumn(n, distinct, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, distinct)
	pool := make([]string, 0, distinct)
	for len(pool) < distinct {
		b := make([]byte, 1+r.rand.Intn(maxLen))
		for i := range b {
			b[i] = letters[r.rand.Intn(len(letters))]
		}
		s := string(b)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		pool = append(pool, s)
	}

	out := make([]string, n)
	for i := range out {
		out[i] = pool[r.rand.Intn(distinct)]
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
// This is how real-world data is distributed (power law).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// ZipfColumn returns n int64 values in [0, distinct) with Zipfian skew s:
// a few values repeat very often, most are rare.
func (r *RNG) ZipfColumn(n, distinct int, s float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, n)
	for i := range n {
		out[i] = int64(r.zipfLocked(distinct, s))
	}
	return out
}

// Distinct returns the distinct values of column in first-seen order.
func Distinct[T comparable](column []T) []T {
	seen := make(map[T]struct{}, len(column))
	out := make([]T, 0)
	for _, v := range column {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SortedDistinct returns the distinct values of column in ascending order.
func SortedDistinct[T cmp.Ordered](column []T) []T {
	out := Distinct(column)
	slices.Sort(out)
	return out
}
