package series

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareOperators(t *testing.T) {
	a := New("a", []int32{1, 2, 3}, nil)
	defer a.Release()
	b := New("b", []float64{2, 2, 2}, nil)
	defer b.Release()

	tests := []struct {
		op       CompareOp
		expected []any
	}{
		{Eq, []any{false, true, false}},
		{Ne, []any{true, false, true}},
		{Lt, []any{true, false, false}},
		{Le, []any{true, true, false}},
		{Gt, []any{false, false, true}},
		{Ge, []any{false, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			out, err := a.Compare(tt.op, b)
			require.NoError(t, err)
			defer out.Release()
			assert.Equal(t, dtype.Boolean, out.DataType())
			assert.Equal(t, tt.expected, anys(out))
		})
	}
}

func TestCompareWithNullIsNull(t *testing.T) {
	a := withNulls(t, "a", []string{"x", "", "z"}, []bool{true, false, true})
	defer a.Release()
	b := withNulls(t, "b", []string{"x", "y", ""}, []bool{true, true, false})
	defer b.Release()

	for _, op := range []CompareOp{Eq, Ne, Lt, Ge} {
		out, err := a.Compare(op, b)
		require.NoError(t, err)
		assert.False(t, out.IsNull(0))
		assert.True(t, out.IsNull(1))
		assert.True(t, out.IsNull(2))
		out.Release()
	}

	nulls := NewNull("n", 3)
	defer nulls.Release()
	out, err := a.Compare(Eq, nulls)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, []any{nil, nil, nil}, anys(out))
}

func TestCompareTypeMismatch(t *testing.T) {
	a := New("a", []string{"1"}, nil)
	defer a.Release()
	b := New("b", []int64{1}, nil)
	defer b.Release()

	_, err := a.Compare(Eq, b)
	require.ErrorIs(t, err, dferrors.ErrTypeMismatch)

	d := New("d", []arrow.Date32{1}, nil)
	defer d.Release()
	_, err = d.Compare(Eq, b)
	require.ErrorIs(t, err, dferrors.ErrTypeMismatch)
}

func TestCompareBooleanAndTemporal(t *testing.T) {
	a := New("a", []bool{false, true}, nil)
	defer a.Release()
	b := New("b", []bool{true, true}, nil)
	defer b.Release()

	out, err := a.Compare(Lt, b)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, []any{true, false}, anys(out))

	days := New("d", []arrow.Date32{10, 20, 30}, nil)
	defer days.Release()
	after, err := days.CompareScalar(Gt, dtype.ValueOf(arrow.Date32(15)))
	require.NoError(t, err)
	defer after.Release()
	assert.Equal(t, []any{false, true, true}, anys(after))
}

func TestEqMissing(t *testing.T) {
	a := withNulls(t, "a", []int64{1, 0, 0, 4}, []bool{true, false, false, true})
	defer a.Release()
	b := withNulls(t, "b", []int64{1, 0, 3, 5}, []bool{true, false, true, true})
	defer b.Release()

	out, err := a.EqMissing(b)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, 0, out.NullCount())
	assert.Equal(t, []any{true, true, false, false}, anys(out))
}

func TestKleeneLogic(t *testing.T) {
	// Every combination of {true, false, null} on each side.
	lv := []bool{true, true, true, false, false, false, false, false, false}
	lm := []bool{true, true, true, true, true, true, false, false, false}
	rv := []bool{true, false, false, true, false, false, true, false, false}
	rm := []bool{true, true, false, true, true, false, true, true, false}

	l := withNulls(t, "l", lv, lm)
	defer l.Release()
	r := withNulls(t, "r", rv, rm)
	defer r.Release()

	and, err := l.And(r)
	require.NoError(t, err)
	defer and.Release()
	assert.Equal(t, []any{true, false, nil, false, false, false, nil, false, nil}, anys(and))

	or, err := l.Or(r)
	require.NoError(t, err)
	defer or.Release()
	assert.Equal(t, []any{true, true, true, true, false, nil, true, nil, nil}, anys(or))

	not, err := l.Not()
	require.NoError(t, err)
	defer not.Release()
	assert.Equal(t, []any{false, false, false, true, true, true, nil, nil, nil}, anys(not))

	ints := New("i", []int64{1}, nil)
	defer ints.Release()
	_, err = ints.Not()
	require.ErrorIs(t, err, dferrors.ErrTypeMismatch)
}
