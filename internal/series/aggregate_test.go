package series

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateIgnoresNulls(t *testing.T) {
	s := withNulls(t, "x", []int32{1, 0, 3}, []bool{true, false, true})
	defer s.Release()

	tests := []struct {
		op       AggregateOp
		expected dtype.Value
	}{
		{Sum, dtype.ValueOf(int64(4))},
		{Min, dtype.ValueOf(int32(1))},
		{Max, dtype.ValueOf(int32(3))},
		{Mean, dtype.ValueOf(2.0)},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := s.Aggregate(tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAggregateAllNullOrEmpty(t *testing.T) {
	allNull := withNulls(t, "x", []int64{0, 0}, []bool{false, false})
	defer allNull.Release()
	empty := New("e", []float32{}, nil)
	defer empty.Release()

	v, err := allNull.Aggregate(Max)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.Equal(t, dtype.I64, v.DataType())

	v, err = allNull.Aggregate(Sum)
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf(int64(0)), v)

	v, err = empty.Aggregate(Sum)
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf(0.0), v)

	v, err = empty.Aggregate(Mean)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = empty.Aggregate(Min)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestAggregateOrderableTypes(t *testing.T) {
	words := New("w", []string{"pear", "apple", "zoo"}, nil)
	defer words.Release()
	flags := New("f", []bool{true, false, true}, nil)
	defer flags.Release()
	days := New("d", []arrow.Date32{30, 10, 20}, nil)
	defer days.Release()

	v, err := words.Aggregate(Min)
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf("apple"), v)

	v, err = words.Aggregate(Max)
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf("zoo"), v)

	v, err = flags.Aggregate(Min)
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf(false), v)

	v, err = days.Aggregate(Max)
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf(arrow.Date32(30)), v)

	_, err = words.Aggregate(Sum)
	require.ErrorIs(t, err, dferrors.ErrUnsupported)

	_, err = days.Aggregate(Mean)
	require.ErrorIs(t, err, dferrors.ErrUnsupported)
}

func TestAggregateFloats(t *testing.T) {
	s := New("x", []float64{1, math.NaN(), 2}, nil)
	defer s.Release()

	lo, err := s.Aggregate(Min)
	require.NoError(t, err)
	f, _ := lo.Float64()
	assert.True(t, math.IsNaN(f))

	hi, err := s.Aggregate(Max)
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf(2.0), hi)

	f32 := New("y", []float32{0.5, 0.25}, nil)
	defer f32.Release()
	sum, err := f32.Aggregate(Sum)
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf(0.75), sum)
}

func TestAggregateNullSeries(t *testing.T) {
	s := NewNull("n", 3)
	defer s.Release()

	for _, op := range []AggregateOp{Min, Max} {
		v, err := s.Aggregate(op)
		require.NoError(t, err)
		assert.True(t, v.IsNull(), op.String())
	}
	for _, op := range []AggregateOp{Sum, Mean} {
		_, err := s.Aggregate(op)
		require.ErrorIs(t, err, dferrors.ErrUnsupported, op.String())
	}
}

func TestUnique(t *testing.T) {
	s := withNulls(t, "x", []int64{3, 1, 3, 0, 1, 0}, []bool{true, true, true, false, true, false})
	defer s.Release()

	u, err := s.Unique()
	require.NoError(t, err)
	defer u.Release()
	assert.Equal(t, []any{int64(3), int64(1), nil}, anys(u))
	assert.Equal(t, 3, s.NUnique())
}

func TestUniqueNormalisesFloats(t *testing.T) {
	s := New("x", []float64{0, math.Copysign(0, -1), math.NaN(), math.NaN(), 1}, nil)
	defer s.Release()

	assert.Equal(t, 3, s.NUnique())
}

func TestNullMasksAndFill(t *testing.T) {
	s := withNulls(t, "x", []float64{1, 0, 3}, []bool{true, false, true})
	defer s.Release()

	isNull := s.IsNullMask()
	defer isNull.Release()
	assert.Equal(t, []any{false, true, false}, anys(isNull))

	notNull := s.IsNotNullMask()
	defer notNull.Release()
	assert.Equal(t, []any{true, false, true}, anys(notNull))

	filled, err := s.FillNull(dtype.ValueOf(int64(-1)))
	require.NoError(t, err)
	defer filled.Release()
	assert.Equal(t, []any{1.0, -1.0, 3.0}, anys(filled))
	assert.Equal(t, 0, filled.NullCount())

	_, err = s.FillNull(dtype.ValueOf("nope"))
	require.ErrorIs(t, err, dferrors.ErrCast)
}

func TestFillNullWithStrategy(t *testing.T) {
	s := withNulls(t, "x", []int32{0, 2, 0, 0, 6, 0}, []bool{false, true, false, false, true, false})
	defer s.Release()

	tests := []struct {
		strategy FillNullStrategy
		expected []any
	}{
		{FillForward, []any{nil, int32(2), int32(2), int32(2), int32(6), int32(6)}},
		{FillBackward, []any{int32(2), int32(2), int32(6), int32(6), int32(6), nil}},
		{FillMin, []any{int32(2), int32(2), int32(2), int32(2), int32(6), int32(2)}},
		{FillMax, []any{int32(6), int32(2), int32(6), int32(6), int32(6), int32(6)}},
		{FillMean, []any{int32(4), int32(2), int32(4), int32(4), int32(6), int32(4)}},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			out, err := s.FillNullWithStrategy(tt.strategy)
			require.NoError(t, err)
			defer out.Release()
			assert.Equal(t, tt.expected, anys(out))
			assert.Equal(t, dtype.I32, out.DataType())
		})
	}
}

func TestFillNullWithStrategyErrors(t *testing.T) {
	text := withNulls(t, "s", []string{"a", ""}, []bool{true, false})
	defer text.Release()

	out, err := text.FillNullWithStrategy(FillForward)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, []any{"a", "a"}, anys(out))

	_, err = text.FillNullWithStrategy(FillMean)
	require.ErrorIs(t, err, dferrors.ErrUnsupported)

	_, err = text.FillNullWithStrategy(FillNullStrategy(42))
	require.ErrorIs(t, err, dferrors.ErrSchema)
	assert.Equal(t, "FillNullStrategy(42)", FillNullStrategy(42).String())

	allNull := NewNull("n", 3)
	defer allNull.Release()
	filled, err := allNull.FillNullWithStrategy(FillBackward)
	require.NoError(t, err)
	defer filled.Release()
	assert.Equal(t, 3, filled.NullCount())
}

func TestQuantile(t *testing.T) {
	s := withNulls(t, "x", []int64{7, 0, 1, 3, 5}, []bool{true, false, true, true, true})
	defer s.Release()

	tests := []struct {
		q        float64
		expected float64
	}{
		{0, 1},
		{1, 7},
		{0.5, 4},
		{0.25, 2.5},
		{0.9, 6.4},
	}

	for _, tt := range tests {
		got, err := s.Quantile(tt.q)
		require.NoError(t, err)
		f, ok := got.Float64()
		require.True(t, ok)
		assert.InDelta(t, tt.expected, f, 1e-9, "q=%v", tt.q)
		assert.Equal(t, dtype.F64, got.DataType())
	}

	median, err := s.Median()
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf(4.0), median)
}

func TestQuantileEdgeCases(t *testing.T) {
	empty := New("e", []float32{}, nil)
	defer empty.Release()
	v, err := empty.Median()
	require.NoError(t, err)
	assert.Equal(t, dtype.NullOf(dtype.F64), v)

	odd := New("o", []float64{3, 1, 2}, nil)
	defer odd.Release()
	v, err = odd.Median()
	require.NoError(t, err)
	assert.Equal(t, dtype.ValueOf(2.0), v)

	for _, q := range []float64{-0.1, 1.5, math.NaN()} {
		_, err = odd.Quantile(q)
		require.ErrorIs(t, err, dferrors.ErrSchema)
	}

	text := New("s", []string{"a"}, nil)
	defer text.Release()
	_, err = text.Median()
	require.ErrorIs(t, err, dferrors.ErrUnsupported)
}
