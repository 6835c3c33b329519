package series

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/validation"
	"golang.org/x/exp/constraints"
)

// AggregateOp is a reduction over a Series.
type AggregateOp int

const (
	Min AggregateOp = iota
	Max
	Sum
	Mean
)

// String returns the aggregation name
func (op AggregateOp) String() string {
	switch op {
	case Min:
		return "Min"
	case Max:
		return "Max"
	case Sum:
		return "Sum"
	case Mean:
		return "Mean"
	default:
		return fmt.Sprintf("AggregateOp(%d)", int(op))
	}
}

// Aggregate reduces the Series to a single Value, ignoring nulls.
//
// Min and Max accept every orderable type and return null when no element is
// valid. Sum accepts numeric types only; integers accumulate in I64 and floats
// in F64, and an empty or all-null Series sums to zero. Mean returns an F64,
// null when no element is valid. Min and Max of a Null typed Series are null.
func (s *Series) Aggregate(op AggregateOp) (dtype.Value, error) {
	switch op {
	case Min, Max:
		if s.dtype == dtype.Null {
			return dtype.NullOf(dtype.Null), nil
		}
		return s.extremum(op == Max), nil
	case Sum, Mean:
		if err := validation.ValidateDataType(s.dtype, op.String(), s.name, dtype.NumericTypes()...); err != nil {
			return dtype.Value{}, err
		}
		if op == Sum {
			return s.sum(), nil
		}
		return s.mean(), nil
	default:
		return dtype.Value{}, dferrors.NewUnsupportedTypeError(op.String(), s.dtype.String())
	}
}

func (s *Series) extremum(wantMax bool) dtype.Value {
	switch s.dtype {
	case dtype.Boolean:
		return reduceOrdered(s, boolsAsInts(s.arr), wantMax, func(v uint8) dtype.Value {
			return dtype.ValueOf(v == 1)
		})
	case dtype.U32:
		return reduceOrdered(s, toSlice[uint32](s.arr), wantMax, dtype.ValueOf[uint32])
	case dtype.I32:
		return reduceOrdered(s, toSlice[int32](s.arr), wantMax, dtype.ValueOf[int32])
	case dtype.I64:
		return reduceOrdered(s, toSlice[int64](s.arr), wantMax, dtype.ValueOf[int64])
	case dtype.F32:
		return reduceOrdered(s, toSlice[float32](s.arr), wantMax, dtype.ValueOf[float32])
	case dtype.F64:
		return reduceOrdered(s, toSlice[float64](s.arr), wantMax, dtype.ValueOf[float64])
	case dtype.Utf8:
		return reduceOrdered(s, toSlice[string](s.arr), wantMax, dtype.ValueOf[string])
	case dtype.Date:
		return reduceOrdered(s, toSlice[arrow.Date32](s.arr), wantMax, dtype.ValueOf[arrow.Date32])
	default:
		return reduceOrdered(s, toSlice[arrow.Time64](s.arr), wantMax, dtype.ValueOf[arrow.Time64])
	}
}

// reduceOrdered finds the smallest or largest valid element using cmp.Compare,
// which orders NaN before every other float.
func reduceOrdered[T constraints.Ordered](s *Series, values []T, wantMax bool, box func(T) dtype.Value) dtype.Value {
	var (
		best  T
		found bool
	)
	for i, v := range values {
		if s.arr.IsNull(i) {
			continue
		}
		if !found {
			best, found = v, true
			continue
		}
		c := cmp.Compare(v, best)
		if (wantMax && c > 0) || (!wantMax && c < 0) {
			best = v
		}
	}
	if !found {
		return dtype.NullOf(s.dtype)
	}
	return box(best)
}

func (s *Series) sum() dtype.Value {
	if s.dtype.IsFloat() {
		return dtype.ValueOf(sumValid(s, numericAs[float64](s.arr)))
	}
	return dtype.ValueOf(sumValid(s, numericAs[int64](s.arr)))
}

func sumValid[T number](s *Series, values []T) T {
	var total T
	for i, v := range values {
		if s.arr.IsValid(i) {
			total += v
		}
	}
	return total
}

func (s *Series) mean() dtype.Value {
	valid := s.Len() - s.NullCount()
	if valid == 0 {
		return dtype.NullOf(dtype.F64)
	}
	return dtype.ValueOf(sumValid(s, numericAs[float64](s.arr)) / float64(valid))
}

// Unique returns the distinct elements in order of first occurrence. Null, if
// present, appears once.
func (s *Series) Unique() (*Series, error) {
	return s.Take(s.firstOccurrences(), false)
}

// NUnique returns the number of distinct elements, counting null once.
func (s *Series) NUnique() int {
	return len(s.firstOccurrences())
}

// firstOccurrences returns the row of the first occurrence of every distinct
// element, in ascending order.
func (s *Series) firstOccurrences() []int {
	kept := NewKeyIndex(s.Len())
	rows := make([]int, 0)
	seenNull := false
	var buf []byte

	for i := range s.Len() {
		key, hash, ok := s.HashKey(i, buf[:0])
		buf = key
		if !ok {
			if !seenNull {
				seenNull = true
				rows = append(rows, i)
			}
			continue
		}
		if kept.Insert(key, hash, i) {
			rows = append(rows, i)
		}
	}
	return rows
}

// IsNullMask returns a Boolean Series that is true where this Series is null.
func (s *Series) IsNullMask() *Series {
	flags := make([]bool, s.Len())
	for i := range flags {
		flags[i] = s.arr.IsNull(i)
	}
	return wrap(s.name, dtype.Boolean, buildArray(s.mem, dtype.Boolean, flags, nil), s.mem)
}

// IsNotNullMask returns a Boolean Series that is true where this Series is valid.
func (s *Series) IsNotNullMask() *Series {
	return wrap(s.name, dtype.Boolean, buildArray(s.mem, dtype.Boolean, s.Validity(), nil), s.mem)
}

// FillNull replaces every null with v, cast to the Series' type.
func (s *Series) FillNull(v dtype.Value) (*Series, error) {
	if s.dtype == dtype.Null {
		return Full(s.name, v, s.Len(), s.mem), nil
	}

	fill, err := dtype.CastValue(v, s.dtype, castOptionsFromConfig().Overflow)
	if err != nil {
		return nil, err
	}

	b := newBuilder(s.mem, s.dtype)
	defer b.Release()
	b.Reserve(s.Len())
	for i := range s.Len() {
		if s.arr.IsNull(i) {
			appendValue(b, fill)
			continue
		}
		appendValue(b, valueAt(s.arr, s.dtype, i))
	}
	return wrap(s.name, s.dtype, b.NewArray(), s.mem), nil
}

// FillNullStrategy selects how FillNullWithStrategy derives replacements.
type FillNullStrategy int

const (
	FillForward  FillNullStrategy = iota // previous valid element
	FillBackward                         // next valid element
	FillMin
	FillMax
	FillMean
)

func (f FillNullStrategy) String() string {
	switch f {
	case FillForward:
		return "forward"
	case FillBackward:
		return "backward"
	case FillMin:
		return "min"
	case FillMax:
		return "max"
	case FillMean:
		return "mean"
	default:
		return fmt.Sprintf("FillNullStrategy(%d)", int(f))
	}
}

// FillNullWithStrategy replaces nulls using strategy. Forward and backward
// fill leave a null where no valid element precedes or follows it. Min, Max
// and Mean fill with the aggregate of the whole Series, cast back to its type;
// Mean requires a numeric Series.
func (s *Series) FillNullWithStrategy(strategy FillNullStrategy) (*Series, error) {
	switch strategy {
	case FillForward, FillBackward:
		return s.Take(s.nearestValid(strategy == FillBackward), true)
	case FillMin:
		return s.fillWithAggregate(Min)
	case FillMax:
		return s.fillWithAggregate(Max)
	case FillMean:
		return s.fillWithAggregate(Mean)
	default:
		return nil, dferrors.NewInvalidInputError("FillNull", "unknown fill strategy "+strategy.String())
	}
}

func (s *Series) fillWithAggregate(op AggregateOp) (*Series, error) {
	v, err := s.Aggregate(op)
	if err != nil {
		return nil, err
	}
	return s.FillNull(v)
}

// nearestValid maps every row to itself when valid, otherwise to the closest
// valid row before it (or after it when backward), or -1 if there is none.
func (s *Series) nearestValid(backward bool) []int {
	n := s.Len()
	indices := make([]int, n)
	last := -1
	for k := range n {
		i := k
		if backward {
			i = n - 1 - k
		}
		if s.arr.IsValid(i) {
			last = i
		}
		indices[i] = last
	}
	return indices
}

// Quantile returns the q-quantile of the valid elements as an F64, linearly
// interpolating between the two nearest ranks. It is null when no element is
// valid. q must lie in [0, 1] and the Series must be numeric.
func (s *Series) Quantile(q float64) (dtype.Value, error) {
	if err := validation.ValidateDataType(s.dtype, "Quantile", s.name, dtype.NumericTypes()...); err != nil {
		return dtype.Value{}, err
	}
	if math.IsNaN(q) || q < 0 || q > 1 {
		return dtype.Value{}, dferrors.NewInvalidInputError("Quantile", fmt.Sprintf("quantile %v is outside [0, 1]", q))
	}

	values := make([]float64, 0, s.Len()-s.NullCount())
	for v := range s.Iter() {
		if f, ok := v.Float64(); ok {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return dtype.NullOf(dtype.F64), nil
	}
	slices.Sort(values)

	pos := q * float64(len(values)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return dtype.ValueOf(values[lo] + (values[hi]-values[lo])*(pos-float64(lo))), nil
}

// Median is Quantile(0.5).
func (s *Series) Median() (dtype.Value, error) {
	return s.Quantile(0.5)
}
