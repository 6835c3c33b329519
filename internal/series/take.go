package series

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
)

// Take gathers the elements at indices, in order. When allowNullIndex is true
// a negative index produces a null; otherwise it is an Index error, as is any
// index >= Len.
func (s *Series) Take(indices []int, allowNullIndex bool) (*Series, error) {
	n := s.Len()
	for _, idx := range indices {
		if idx >= n || (idx < 0 && !allowNullIndex) {
			return nil, dferrors.NewIndexError("Take", idx, n)
		}
	}
	return wrap(s.name, s.dtype, gather(s.mem, s.dtype, s.arr, indices), s.mem), nil
}

// Filter keeps the rows where mask is true. Null mask entries exclude the row.
func (s *Series) Filter(mask *Series) (*Series, error) {
	if err := checkMask("Filter", mask, s.Len()); err != nil {
		return nil, err
	}
	return s.Take(MaskIndices(mask), false)
}

// checkMask validates that mask is a Boolean Series of length n.
func checkMask(op string, mask *Series, n int) error {
	if mask.dtype != dtype.Boolean {
		return dferrors.NewTypeMismatchError(op, mask.name, mask.dtype.String(), dtype.Boolean.String())
	}
	if mask.Len() != n {
		return dferrors.NewLengthMismatchError(op, mask.name, n, mask.Len())
	}
	return nil
}

// Selection returns the set of rows where mask is true and not null.
func Selection(mask *Series) *roaring.Bitmap {
	rows := roaring.New()
	b, ok := mask.arr.(*array.Boolean)
	if !ok {
		return rows
	}
	for i := range b.Len() {
		if b.IsValid(i) && b.Value(i) {
			rows.Add(uint32(i)) //nolint:gosec // row counts fit in uint32
		}
	}
	return rows
}

// MaskIndices converts a Boolean mask into the ascending list of selected rows.
func MaskIndices(mask *Series) []int {
	rows := Selection(mask)
	out := make([]int, 0, rows.GetCardinality())
	it := rows.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Slice returns length elements starting at offset, sharing the underlying
// data.
func (s *Series) Slice(offset, length int) (*Series, error) {
	if offset < 0 || offset > s.Len() {
		return nil, dferrors.NewIndexError("Slice", offset, s.Len())
	}
	if length < 0 || offset+length > s.Len() {
		return nil, dferrors.NewIndexError("Slice", offset+length, s.Len())
	}
	arr := array.NewSlice(s.arr, int64(offset), int64(offset+length))
	return wrap(s.name, s.dtype, arr, s.mem), nil
}

// Head returns the first n elements, or the whole Series if shorter.
func (s *Series) Head(n int) *Series {
	n = max(0, min(n, s.Len()))
	out, _ := s.Slice(0, n)
	return out
}

// Tail returns the last n elements, or the whole Series if shorter.
func (s *Series) Tail(n int) *Series {
	n = max(0, min(n, s.Len()))
	out, _ := s.Slice(s.Len()-n, n)
	return out
}

// Append returns a Series holding this Series' elements followed by other's.
// Both must have the same DataType.
func (s *Series) Append(other *Series) (*Series, error) {
	if s.dtype != other.dtype {
		return nil, dferrors.NewTypeMismatchError("Append", s.name, s.dtype.String(), other.dtype.String())
	}
	if s.dtype == dtype.Null {
		return NewNull(s.name, s.Len()+other.Len()), nil
	}

	arr, err := array.Concatenate([]arrow.Array{s.arr, other.arr}, s.mem)
	if err != nil {
		return nil, &dferrors.DataFrameError{
			Kind:    dferrors.KindSchema,
			Op:      "Append",
			Column:  s.name,
			Message: err.Error(),
			Cause:   err,
		}
	}
	return wrap(s.name, s.dtype, arr, s.mem), nil
}

// Reverse returns the elements in reverse order.
func (s *Series) Reverse() *Series {
	n := s.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = n - 1 - i
	}
	out, _ := s.Take(indices, false)
	return out
}

// Shift moves every element periods positions towards the end, or towards the
// start for a negative periods. The vacated positions hold fill, cast to the
// Series' type; a null fill leaves them null. A non-zero |periods| must be
// less than Len.
func (s *Series) Shift(periods int, fill dtype.Value) (*Series, error) {
	n := s.Len()
	if periods != 0 && (periods >= n || -periods >= n) {
		return nil, dferrors.NewIndexError("Shift", periods, n)
	}

	if fill.IsNull() {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i - periods
			if indices[i] >= n {
				indices[i] = -1
			}
		}
		return s.Take(indices, true)
	}

	value, err := dtype.CastValue(fill, s.dtype, castOptionsFromConfig().Overflow)
	if err != nil {
		return nil, err
	}
	vacated := max(periods, -periods)
	pad := Full(s.name, value, vacated, s.mem)
	defer pad.Release()
	body, err := s.Slice(max(0, -periods), n-vacated)
	if err != nil {
		return nil, err
	}
	defer body.Release()

	if periods > 0 {
		return pad.Append(body)
	}
	return body.Append(pad)
}
