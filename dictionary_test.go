package memdict

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/hupe1980/memdict/arena"
	"github.com/hupe1980/memdict/codec"
	"github.com/hupe1980/memdict/resource"
	"github.com/hupe1980/memdict/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T) *arena.Arena {
	t.Helper()
	a := arena.New(arena.DefaultConfig())
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func testConfig(cardinality int) Config {
	cfg := DefaultConfig()
	cfg.EstimatedCardinality = cardinality
	cfg.AllocationContext = "test.col"
	return cfg
}

func newFloatDict(t *testing.T, values ...float32) *Dictionary[float32] {
	t.Helper()
	d, err := NewFloat32(newTestArena(t), testConfig(8))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	for _, v := range values {
		_, err := d.Index(v)
		require.NoError(t, err)
	}
	return d
}

func mustIndexOf[T any](t *testing.T, d *Dictionary[T], v T) uint32 {
	t.Helper()
	id, ok, err := d.IndexOf(v)
	require.NoError(t, err)
	require.True(t, ok, "value %v not indexed", v)
	return id
}

func mustLen[T any](t *testing.T, d *Dictionary[T]) int {
	t.Helper()
	n, err := d.Len()
	require.NoError(t, err)
	return n
}

func mustStats[T any](t *testing.T, d *Dictionary[T]) Stats {
	t.Helper()
	st, err := d.Stats()
	require.NoError(t, err)
	return st
}

func TestDictionary_Scenarios(t *testing.T) {
	t.Run("IndexDeduplicates", func(t *testing.T) {
		d := newFloatDict(t)

		var ids []uint32
		for _, v := range []float32{3.0, 1.0, 5.0, 3.0, 2.0} {
			id, err := d.Index(v)
			require.NoError(t, err)
			ids = append(ids, id)
		}

		assert.Equal(t, []uint32{0, 1, 2, 0, 3}, ids)
		assert.Equal(t, 4, mustLen(t, d))

		minV, ok, err := d.MinValue()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, float32(1.0), minV)

		maxV, ok, err := d.MaxValue()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, float32(5.0), maxV)
	})

	t.Run("IndexOfMiss", func(t *testing.T) {
		d := newFloatDict(t, 3.0, 1.0, 5.0, 3.0, 2.0)

		_, ok, err := d.IndexOf(9.0)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = d.IndexOfText("9.0")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("InRange", func(t *testing.T) {
		d := newFloatDict(t, 1.0, 3.0, 5.0)
		id3 := mustIndexOf(t, d, 3.0)
		id5 := mustIndexOf(t, d, 5.0)

		in, err := d.InRange("1.0", "5.0", id3, true, true)
		require.NoError(t, err)
		assert.True(t, in)

		in, err = d.InRange("1.0", "5.0", id5, false, true)
		require.NoError(t, err)
		assert.True(t, in)

		in, err = d.InRange("1.0", "5.0", id5, false, false)
		require.NoError(t, err)
		assert.False(t, in)
	})

	t.Run("MultiValued", func(t *testing.T) {
		d := newFloatDict(t, 2.0)

		ids, err := d.IndexValues([]float32{1.5, 2.5, 1.5})
		require.NoError(t, err)
		assert.Equal(t, []uint32{1, 2, 1}, ids)
		assert.Equal(t, 3, mustLen(t, d))

		minV, _, _ := d.MinValue()
		maxV, _, _ := d.MaxValue()
		assert.Equal(t, float32(1.5), minV)
		assert.Equal(t, float32(2.5), maxV)
	})

	t.Run("SortedSnapshot", func(t *testing.T) {
		d := newFloatDict(t, 3.0, 1.0, 5.0, 2.0)

		values, err := d.SortedValues()
		require.NoError(t, err)
		assert.Equal(t, []float32{1.0, 2.0, 3.0, 5.0}, values)

		ids, err := d.SortedIDs()
		require.NoError(t, err)
		assert.Equal(t, []uint32{1, 3, 0, 2}, ids)

		// The snapshot does not follow later indexing.
		_, err = d.Index(0.5)
		require.NoError(t, err)
		assert.Equal(t, []float32{1.0, 2.0, 3.0, 5.0}, values)
	})

	t.Run("ReadAfterClose", func(t *testing.T) {
		d, err := NewFloat32(newTestArena(t), testConfig(8))
		require.NoError(t, err)
		_, err = d.Index(1.0)
		require.NoError(t, err)

		require.NoError(t, d.Close())
		assert.ErrorIs(t, d.Close(), ErrClosed)

		_, err = d.Get(0)
		assert.ErrorIs(t, err, ErrClosed)
		_, _, err = d.IndexOf(1.0)
		assert.ErrorIs(t, err, ErrClosed)
		_, _, err = d.IndexOfText("1")
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.InRange("0", "2", 0, true, true)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.MatchRange("0", "2", true, true)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.Compare(0, 0)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.SortedValues()
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.SortedIDs()
		assert.ErrorIs(t, err, ErrClosed)
		_, _, err = d.MinValue()
		assert.ErrorIs(t, err, ErrClosed)
		_, _, err = d.MaxValue()
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.Index(2.0)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.IndexValues([]float32{2.0})
		assert.ErrorIs(t, err, ErrClosed)

		_, err = d.Parse("2.5")
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.Len()
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.AvgValueSize()
		assert.ErrorIs(t, err, ErrClosed)
		_, err = d.TotalOffHeapMemoryUsed()
		assert.ErrorIs(t, err, ErrClosed)
		st, err := d.Stats()
		assert.ErrorIs(t, err, ErrClosed)
		assert.Equal(t, Stats{}, st)
	})
}

func TestDictionary_RoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)
	col := rng.Float32Column(5000, 700)

	d, err := NewFloat32(newTestArena(t), testConfig(64))
	require.NoError(t, err)
	defer d.Close()

	ids, err := d.IndexValues(col)
	require.NoError(t, err)

	distinct := testutil.Distinct(col)
	assert.Equal(t, len(distinct), mustLen(t, d))

	for i, v := range col {
		got, err := d.Get(ids[i])
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	// IDs follow first-seen order.
	for want, v := range distinct {
		assert.Equal(t, uint32(want), mustIndexOf(t, d, v))
	}

	sorted, err := d.SortedValues()
	require.NoError(t, err)
	assert.Equal(t, testutil.SortedDistinct(col), sorted)

	minV, _, _ := d.MinValue()
	maxV, _, _ := d.MaxValue()
	assert.Equal(t, sorted[0], minV)
	assert.Equal(t, sorted[len(sorted)-1], maxV)
}

func TestDictionary_MinMaxUndefined(t *testing.T) {
	d := newFloatDict(t)

	_, ok, err := d.MinValue()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = d.MaxValue()
	require.NoError(t, err)
	assert.False(t, ok)

	// All-negative values must not be masked by a seed.
	_, err = d.IndexValues([]float32{-3, -7, -1})
	require.NoError(t, err)

	maxV, ok, _ := d.MaxValue()
	require.True(t, ok)
	assert.Equal(t, float32(-1), maxV)
	minV, _, _ := d.MinValue()
	assert.Equal(t, float32(-7), minV)
}

func TestDictionary_InRangeFlags(t *testing.T) {
	d := newFloatDict(t, 1, 2, 3)

	tests := []struct {
		value        float32
		inclL, inclU bool
		want         bool
	}{
		{1, true, true, true},
		{1, false, true, false},
		{3, true, true, true},
		{3, true, false, false},
		{2, false, false, true},
		{2, true, true, true},
	}
	for _, tt := range tests {
		id := mustIndexOf(t, d, tt.value)
		got, err := d.InRange("1", "3", id, tt.inclL, tt.inclU)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "value=%v inclL=%v inclU=%v", tt.value, tt.inclL, tt.inclU)
	}

	// Empty interval.
	got, err := d.InRange("3", "1", mustIndexOf(t, d, 2), true, true)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDictionary_InRangeSignedZero(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	d := newFloatDict(t, negZero, 1)
	id := mustIndexOf(t, d, negZero)

	tests := []struct {
		lower, upper string
		inclL, inclU bool
		want         bool
	}{
		{"0", "5", true, true, true},
		{"0", "5", true, false, true},
		{"0", "5", false, true, false},
		{"0", "5", false, false, false},
		{"-0", "5", true, true, true},
		{"-0", "5", true, false, true},
		{"-0", "5", false, true, false},
		{"-0", "5", false, false, false},
		{"-5", "0", true, true, true},
		{"-5", "0", false, true, true},
		{"-5", "0", true, false, false},
		{"-5", "0", false, false, false},
		{"-5", "-0", true, true, true},
		{"-5", "-0", false, true, true},
		{"-5", "-0", true, false, false},
		{"-5", "-0", false, false, false},
	}
	for _, tt := range tests {
		got, err := d.InRange(tt.lower, tt.upper, id, tt.inclL, tt.inclU)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "[%s, %s] inclL=%v inclU=%v", tt.lower, tt.upper, tt.inclL, tt.inclU)
	}

	bm, err := d.MatchRange("0", "5", true, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, bm.ToArray())

	bm, err = d.MatchRange("-5", "0", true, false)
	require.NoError(t, err)
	assert.True(t, bm.IsEmpty())

	// Sorting still places -0 before +0.
	_, err = d.Index(0)
	require.NoError(t, err)
	values, err := d.SortedValues()
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.True(t, math.Signbit(float64(values[0])))
	assert.False(t, math.Signbit(float64(values[1])))
}

func TestDictionary_MatchRange(t *testing.T) {
	d := newFloatDict(t, 5, 1, 4, 2, 3)

	bm, err := d.MatchRange("2", "4", true, false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 3}, bm.ToArray()) // 4 -> id 2, 2 -> id 3

	bm, err = d.MatchRange("2", "4", false, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 4}, bm.ToArray()) // 4, 3

	bm, err = d.MatchRange("10", "20", true, true)
	require.NoError(t, err)
	assert.True(t, bm.IsEmpty())
}

func TestDictionary_Errors(t *testing.T) {
	d := newFloatDict(t, 1, 2)

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := d.Get(2)
		require.ErrorIs(t, err, ErrOutOfRange)

		var oor *ErrIDOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, uint32(2), oor.ID)
		assert.Equal(t, 2, oor.Length)

		_, err = d.Compare(0, 7)
		assert.ErrorIs(t, err, ErrOutOfRange)

		_, err = d.InRange("0", "1", 7, true, true)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("Parse", func(t *testing.T) {
		_, err := d.InRange("abc", "1", 0, true, true)
		require.ErrorIs(t, err, ErrParse)
		assert.ErrorIs(t, err, codec.ErrParse)

		var pe *ErrParseValue
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "float32", pe.Type)
		assert.Equal(t, "abc", pe.Text)

		_, err = d.InRange("0", "", 0, true, true)
		assert.ErrorIs(t, err, ErrParse)

		_, _, err = d.IndexOfText("not-a-number")
		assert.ErrorIs(t, err, ErrParse)

		_, err = d.MatchRange("x", "1", true, true)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("Compare", func(t *testing.T) {
		c, err := d.Compare(0, 1)
		require.NoError(t, err)
		assert.Negative(t, c)

		c, err = d.Compare(1, 1)
		require.NoError(t, err)
		assert.Zero(t, c)
	})
}

func TestDictionary_FloatTotalOrder(t *testing.T) {
	nan := float32(math.NaN())
	otherNaN := math.Float32frombits(0x7FC00001)
	negZero := float32(math.Copysign(0, -1))
	inf := float32(math.Inf(1))

	d := newFloatDict(t, 1, nan, 0, negZero, inf, otherNaN)

	// Every NaN is one entry, -0 and +0 are two.
	assert.Equal(t, 5, mustLen(t, d))
	assert.Equal(t, mustIndexOf(t, d, nan), mustIndexOf(t, d, otherNaN))

	maxV, _, _ := d.MaxValue()
	assert.True(t, math.IsNaN(float64(maxV)))

	values, err := d.SortedValues()
	require.NoError(t, err)
	require.Len(t, values, 5)
	assert.True(t, math.Signbit(float64(values[0])))
	assert.Equal(t, float32(0), values[1])
	assert.False(t, math.Signbit(float64(values[1])))
	assert.Equal(t, float32(1), values[2])
	assert.Equal(t, inf, values[3])
	assert.True(t, math.IsNaN(float64(values[4])))

	id, ok, err := d.IndexOfText("NaN")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)
}

func TestDictionary_Int(t *testing.T) {
	a := newTestArena(t)

	d, err := NewInt64(a, testConfig(16))
	require.NoError(t, err)
	defer d.Close()

	rng := testutil.NewRNG(7)
	col := rng.ZipfColumn(3000, 200, 1.2)
	_, err = d.IndexValues(col)
	require.NoError(t, err)

	assert.Equal(t, len(testutil.Distinct(col)), mustLen(t, d))
	avg, err := d.AvgValueSize()
	require.NoError(t, err)
	assert.Equal(t, 8, avg)

	sorted, err := d.SortedValues()
	require.NoError(t, err)
	assert.Equal(t, testutil.SortedDistinct(col), sorted)

	id := mustIndexOf(t, d, col[0])
	f, err := Float64Value(d, id)
	require.NoError(t, err)
	assert.Equal(t, float64(col[0]), f)

	i32, err := NewInt32(a, testConfig(4))
	require.NoError(t, err)
	defer i32.Close()

	_, err = i32.IndexValues([]int32{math.MinInt32, 0, math.MaxInt32})
	require.NoError(t, err)
	minV, _, _ := i32.MinValue()
	maxV, _, _ := i32.MaxValue()
	assert.Equal(t, int32(math.MinInt32), minV)
	assert.Equal(t, int32(math.MaxInt32), maxV)

	in, err := i32.InRange("-5", "5", 1, true, true)
	require.NoError(t, err)
	assert.True(t, in)

	_, err = i32.InRange("1.5", "5", 1, true, true)
	assert.ErrorIs(t, err, ErrParse)
}

func TestDictionary_Float64(t *testing.T) {
	d, err := NewFloat64(newTestArena(t), testConfig(4))
	require.NoError(t, err)
	defer d.Close()

	_, err = d.IndexValues([]float64{2.5, -1.25, 2.5})
	require.NoError(t, err)
	assert.Equal(t, 2, mustLen(t, d))

	v, err := Int64Value(d, mustIndexOf(t, d, -1.25))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)

	id, ok, err := d.IndexOfText(" 2.5 ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(0), id)
}

func TestDictionary_String(t *testing.T) {
	cfg := testConfig(4)
	cfg.VarPageSize = 64
	d, err := NewString(newTestArena(t), cfg)
	require.NoError(t, err)
	defer d.Close()

	rng := testutil.NewRNG(99)
	col := rng.StringColumn(2000, 300, 20)
	col = append(col, "")

	ids, err := d.IndexValues(col)
	require.NoError(t, err)

	distinct := testutil.Distinct(col)
	require.Equal(t, len(distinct), mustLen(t, d))
	for i, v := range col {
		got, err := d.Get(ids[i])
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	sorted, err := d.SortedValues()
	require.NoError(t, err)
	assert.Equal(t, testutil.SortedDistinct(col), sorted)

	minV, _, _ := d.MinValue()
	assert.Equal(t, "", minV)

	var total int
	for _, v := range distinct {
		total += len(v)
	}
	avg, err := d.AvgValueSize()
	require.NoError(t, err)
	assert.Equal(t, total/len(distinct), avg)

	in, err := d.InRange("a", "b", mustIndexOf(t, d, sorted[len(sorted)/2]), true, true)
	require.NoError(t, err)
	assert.Equal(t, sorted[len(sorted)/2] >= "a" && sorted[len(sorted)/2] <= "b", in)
}

func TestDictionary_Overflow(t *testing.T) {
	// One bucket with one slot: every collision spills until a new level
	// takes the overflow list.
	cfg := testConfig(1)
	cfg.SlotsPerBucket = 1
	cfg.MaxOverflowSize = 2

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}
	d, err := NewInt32(newTestArena(t), cfg, WithMetricsCollector(metrics), WithLogger(logger))
	require.NoError(t, err)
	defer d.Close()

	const n = 500
	for i := range int32(n) {
		id, err := d.Index(i)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), id)
	}

	st := mustStats(t, d)
	assert.Equal(t, n, st.Length)
	assert.Greater(t, st.Levels, 1)
	assert.Greater(t, st.Buckets, n/2)
	assert.LessOrEqual(t, st.OverflowLen, cfg.MaxOverflowSize)
	assert.Equal(t, int64(st.OverflowLen), metrics.GetStats().OverflowLen)
	assert.Contains(t, buf.String(), `"msg":"identity index grown"`)

	for i := range int32(n) {
		assert.Equal(t, uint32(i), mustIndexOf(t, d, i))
	}
	_, ok, err := d.IndexOf(n)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDictionary_IndexGrowFailure(t *testing.T) {
	// Index level 8 bytes, values 4+4+8: a second index level (64 bytes)
	// cannot be granted.
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 32})
	a := arena.New(arena.DefaultConfig(), arena.WithMemoryAcquirer(ctrl))
	defer a.Close()

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := testConfig(1)
	cfg.SlotsPerBucket = 1
	cfg.MaxOverflowSize = 1
	d, err := NewFloat32(a, cfg, WithLogger(logger))
	require.NoError(t, err)
	defer d.Close()

	for i, v := range []float32{1, 2, 3} {
		id, err := d.Index(v)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), id)
	}

	st := mustStats(t, d)
	assert.Equal(t, 1, st.Levels)
	assert.Equal(t, 2, st.OverflowLen)
	for i, v := range []float32{1, 2, 3} {
		assert.Equal(t, uint32(i), mustIndexOf(t, d, v))
	}

	out := buf.String()
	assert.Contains(t, out, `"msg":"identity index grow failed"`)
	assert.Contains(t, out, `"msg":"identity index overflow above threshold"`)
}

func TestDictionary_Accounting(t *testing.T) {
	a := newTestArena(t)
	d, err := NewFloat32(a, testConfig(4))
	require.NoError(t, err)

	// Index: 4 buckets * 3 slots * 8 bytes.
	const indexBytes = 4 * 3 * 8
	used, err := d.TotalOffHeapMemoryUsed()
	require.NoError(t, err)
	assert.Equal(t, int64(indexBytes), used)
	avg, err := d.AvgValueSize()
	require.NoError(t, err)
	assert.Equal(t, 4, avg)

	for i := range 10 {
		_, err := d.Index(float32(i))
		require.NoError(t, err)
	}

	used, err = d.TotalOffHeapMemoryUsed()
	require.NoError(t, err)
	assert.Equal(t, int64(10*4+indexBytes), used)
	st := mustStats(t, d)
	assert.Equal(t, 16, st.Capacity)
	assert.Equal(t, int64(16*4+indexBytes), st.OffHeapBytesReserved)
	assert.Equal(t, st.OffHeapBytesReserved, a.Stats().BytesOutstanding)

	require.NoError(t, d.Close())
	assert.Equal(t, int64(0), a.Stats().BytesOutstanding)
}

func TestDictionary_AllocationFailure(t *testing.T) {
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 200})
	a := arena.New(arena.DefaultConfig(), arena.WithMemoryAcquirer(ctrl))
	defer a.Close()

	// Index takes 96 bytes, the first value buffer 16.
	d, err := NewFloat32(a, testConfig(4))
	require.NoError(t, err)
	defer d.Close()

	var indexErr error
	for i := range 100 {
		if _, indexErr = d.Index(float32(i)); indexErr != nil {
			break
		}
	}
	require.Error(t, indexErr)
	assert.ErrorIs(t, indexErr, ErrAllocation)
	assert.ErrorIs(t, indexErr, arena.ErrAllocationFailed)

	// Everything assigned before the failure is intact.
	n := mustLen(t, d)
	for id := range uint32(n) {
		v, err := d.Get(id)
		require.NoError(t, err)
		assert.Equal(t, float32(id), v)
	}

	_, err = NewFloat32(a, testConfig(1<<20))
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestDictionary_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlotsPerBucket = -1
	_, err := NewFloat32(newTestArena(t), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDictionary_ConcurrentReaders(t *testing.T) {
	d, err := NewFloat32(newTestArena(t), testConfig(16))
	require.NoError(t, err)
	defer d.Close()

	const n = 4000
	done := make(chan struct{})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				l, err := d.Len()
				if err != nil {
					errs <- err
					return
				}
				for id := range uint32(l) {
					v, err := d.Get(id)
					if err != nil {
						errs <- err
						return
					}
					if v != float32(id) {
						errs <- errors.New("torn value")
						return
					}
				}
				if l > 0 {
					// The identity index may lag the length, never lead it.
					id, ok, err := d.IndexOf(float32(l - 1))
					if err != nil {
						errs <- err
						return
					}
					if ok && id != uint32(l-1) {
						errs <- errors.New("wrong id")
						return
					}
				}
			}
		}()
	}

	for i := range n {
		_, err := d.Index(float32(i))
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, n, mustLen(t, d))
}

func TestDictionary_ConcurrentWriters(t *testing.T) {
	d, err := NewInt64(newTestArena(t), testConfig(64))
	require.NoError(t, err)
	defer d.Close()

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				if _, err := d.Index(int64(i % 300)); err != nil {
					t.Errorf("writer %d: %v", w, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 300, mustLen(t, d))
	sorted, err := d.SortedValues()
	require.NoError(t, err)
	for i, v := range sorted {
		assert.Equal(t, int64(i), v)
	}
}
