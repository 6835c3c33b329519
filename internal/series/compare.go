package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"golang.org/x/exp/constraints"
)

// CompareOp is an element-wise comparison operator.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// String returns the operator symbol
func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return fmt.Sprintf("CompareOp(%d)", int(op))
	}
}

// Compare applies op element-wise and returns a Boolean Series. A null on
// either side gives null. Numeric operands are compared after promotion to
// their supertype; other types must match exactly. Comparing against a Null
// typed Series gives all nulls.
func (s *Series) Compare(op CompareOp, other *Series) (*Series, error) {
	if s.Len() != other.Len() {
		return nil, dferrors.NewLengthMismatchError("Compare", other.name, s.Len(), other.Len())
	}

	if s.dtype == dtype.Null || other.dtype == dtype.Null {
		return Full(s.name, dtype.NullOf(dtype.Boolean), s.Len(), s.mem), nil
	}

	ct, ok := dtype.ComparisonType(s.dtype, other.dtype)
	if !ok {
		return nil, dferrors.NewTypeMismatchError("Compare", s.name, s.dtype.String(), other.dtype.String())
	}

	var out []bool
	switch ct {
	case dtype.Boolean:
		out = compareSlices(op, boolsAsInts(s.arr), boolsAsInts(other.arr))
	case dtype.U32:
		out = compareSlices(op, numericAs[uint32](s.arr), numericAs[uint32](other.arr))
	case dtype.I32:
		out = compareSlices(op, numericAs[int32](s.arr), numericAs[int32](other.arr))
	case dtype.I64:
		out = compareSlices(op, numericAs[int64](s.arr), numericAs[int64](other.arr))
	case dtype.F32:
		out = compareSlices(op, numericAs[float32](s.arr), numericAs[float32](other.arr))
	case dtype.F64:
		out = compareSlices(op, numericAs[float64](s.arr), numericAs[float64](other.arr))
	case dtype.Utf8:
		out = compareSlices(op, toSlice[string](s.arr), toSlice[string](other.arr))
	case dtype.Date:
		out = compareSlices(op, toSlice[arrow.Date32](s.arr), toSlice[arrow.Date32](other.arr))
	default:
		out = compareSlices(op, toSlice[arrow.Time64](s.arr), toSlice[arrow.Time64](other.arr))
	}

	return wrap(s.name, dtype.Boolean, buildArray(s.mem, dtype.Boolean, out, zipValidity(s.arr, other.arr)), s.mem), nil
}

// CompareScalar compares every element against v.
func (s *Series) CompareScalar(op CompareOp, v dtype.Value) (*Series, error) {
	rhs := Full(s.name, v, s.Len(), s.mem)
	defer rhs.Release()
	return s.Compare(op, rhs)
}

// EqMissing compares for equality treating null as an ordinary value: two
// nulls are equal, a null and a value are not. The result has no nulls.
func (s *Series) EqMissing(other *Series) (*Series, error) {
	eq, err := s.Compare(Eq, other)
	if err != nil {
		return nil, err
	}
	defer eq.Release()

	flags := toSlice[bool](eq.arr)
	for i := range flags {
		ln, rn := s.arr.IsNull(i), other.arr.IsNull(i)
		if ln || rn {
			flags[i] = ln && rn
		}
	}
	return wrap(s.name, dtype.Boolean, buildArray(s.mem, dtype.Boolean, flags, nil), s.mem), nil
}

func compareSlices[T constraints.Ordered](op CompareOp, l, r []T) []bool {
	out := make([]bool, len(l))
	for i := range l {
		switch op {
		case Eq:
			out[i] = l[i] == r[i]
		case Ne:
			out[i] = l[i] != r[i]
		case Lt:
			out[i] = l[i] < r[i]
		case Le:
			out[i] = l[i] <= r[i]
		case Gt:
			out[i] = l[i] > r[i]
		case Ge:
			out[i] = l[i] >= r[i]
		}
	}
	return out
}

// boolsAsInts orders false before true.
func boolsAsInts(arr arrow.Array) []uint8 {
	flags := toSlice[bool](arr)
	out := make([]uint8, len(flags))
	for i, f := range flags {
		if f {
			out[i] = 1
		}
	}
	return out
}

// And combines two Boolean Series with Kleene logic: false wins over null.
func (s *Series) And(other *Series) (*Series, error) {
	return s.kleene("And", other, false)
}

// Or combines two Boolean Series with Kleene logic: true wins over null.
func (s *Series) Or(other *Series) (*Series, error) {
	return s.kleene("Or", other, true)
}

// kleene implements And (dominant=false) and Or (dominant=true).
func (s *Series) kleene(op string, other *Series, dominant bool) (*Series, error) {
	if err := checkMask(op, s, s.Len()); err != nil {
		return nil, err
	}
	if err := checkMask(op, other, s.Len()); err != nil {
		return nil, err
	}

	l, r := toSlice[bool](s.arr), toSlice[bool](other.arr)
	out := make([]bool, len(l))
	valid := make([]bool, len(l))

	for i := range l {
		lv, rv := s.arr.IsValid(i), other.arr.IsValid(i)
		switch {
		case (lv && l[i] == dominant) || (rv && r[i] == dominant):
			out[i], valid[i] = dominant, true
		case lv && rv:
			out[i], valid[i] = !dominant, true
		}
	}

	return wrap(s.name, dtype.Boolean, buildArray(s.mem, dtype.Boolean, out, valid), s.mem), nil
}

// Not negates a Boolean Series; null stays null.
func (s *Series) Not() (*Series, error) {
	if err := checkMask("Not", s, s.Len()); err != nil {
		return nil, err
	}

	flags := toSlice[bool](s.arr)
	for i := range flags {
		flags[i] = !flags[i]
	}

	var valid []bool
	if s.NullCount() > 0 {
		valid = s.Validity()
	}
	return wrap(s.name, dtype.Boolean, buildArray(s.mem, dtype.Boolean, flags, valid), s.mem), nil
}
