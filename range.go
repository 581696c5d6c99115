package memdict

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// InRange reports whether the value with the given ID lies between the
// textual bounds lower and upper. Both bounds are parsed before the value is
// read; includeLower and includeUpper select closed or open ends.
func (d *Dictionary[T]) InRange(lower, upper string, id uint32, includeLower, includeUpper bool) (bool, error) {
	if d.closed.Load() {
		return false, ErrClosed
	}

	lo, err := d.Parse(lower)
	if err != nil {
		return false, err
	}
	hi, err := d.Parse(upper)
	if err != nil {
		return false, err
	}

	v, err := d.Get(id)
	if err != nil {
		return false, err
	}
	return d.between(v, lo, hi, includeLower, includeUpper), nil
}

// between applies the interval test with the codec's range order, in which
// -0 and +0 are the same point.
func (d *Dictionary[T]) between(v, lo, hi T, includeLower, includeUpper bool) bool {
	c := d.codec.RangeCompare(v, lo)
	if c < 0 || (c == 0 && !includeLower) {
		return false
	}
	c = d.codec.RangeCompare(v, hi)
	return c < 0 || (c == 0 && includeUpper)
}

// MatchRange returns the IDs of every value between lower and upper, as of
// the length observed at the start of the call.
func (d *Dictionary[T]) MatchRange(lower, upper string, includeLower, includeUpper bool) (*roaring.Bitmap, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}

	lo, err := d.Parse(lower)
	if err != nil {
		return nil, err
	}
	hi, err := d.Parse(upper)
	if err != nil {
		return nil, err
	}

	bm := roaring.New()
	n := d.store.Len()
	for id := range uint32(n) {
		v, err := d.Get(id)
		if err != nil {
			return nil, err
		}
		if d.between(v, lo, hi, includeLower, includeUpper) {
			bm.Add(id)
		}
	}
	return bm, nil
}

// SortedValues returns a snapshot of every value, sorted by natural order.
// The result is independent of ID order and of later indexing.
func (d *Dictionary[T]) SortedValues() ([]T, error) {
	values, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	slices.SortFunc(values, d.codec.Compare)
	return values, nil
}

// SortedIDs returns every ID ordered by its value. Position i holds the ID
// of the i-th smallest value.
func (d *Dictionary[T]) SortedIDs() ([]uint32, error) {
	values, err := d.snapshot()
	if err != nil {
		return nil, err
	}

	ids := make([]uint32, len(values))
	for i := range ids {
		ids[i] = uint32(i)
	}
	slices.SortFunc(ids, func(a, b uint32) int {
		return d.codec.Compare(values[a], values[b])
	})
	return ids, nil
}

// snapshot decodes IDs [0, Len()) as observed at the start of the call.
func (d *Dictionary[T]) snapshot() ([]T, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}

	n := d.store.Len()
	values := make([]T, n)
	for id := range uint32(n) {
		v, err := d.Get(id)
		if err != nil {
			return nil, err
		}
		values[id] = v
	}
	return values, nil
}
