package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"golang.org/x/exp/constraints"
)

// ArithmeticOp is an element-wise binary arithmetic operator.
type ArithmeticOp int

const (
	Add ArithmeticOp = iota
	Sub
	Mul
	Div
)

// String returns the operator name
func (op ArithmeticOp) String() string {
	switch op {
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	case Div:
		return "Div"
	default:
		return fmt.Sprintf("ArithmeticOp(%d)", int(op))
	}
}

// Arithmetic applies op element-wise. Both operands are promoted to their
// supertype (see dtype.Supertype); a null on either side gives null. Integer
// results wrap on overflow. Integer division by zero follows the configured
// IntDivByZero policy; float division by zero follows IEEE 754.
func (s *Series) Arithmetic(op ArithmeticOp, other *Series) (*Series, error) {
	if s.Len() != other.Len() {
		return nil, dferrors.NewLengthMismatchError(op.String(), other.name, s.Len(), other.Len())
	}

	st, ok := dtype.Supertype(s.dtype, other.dtype)
	if !ok {
		return nil, &dferrors.DataFrameError{
			Kind:    dferrors.KindUnsupported,
			Op:      op.String(),
			Column:  s.name,
			Message: fmt.Sprintf("arithmetic is not defined for %s and %s", s.dtype, other.dtype),
		}
	}

	divErr := config.GetGlobalConfig().IntDivByZero == config.DivByZeroError

	var (
		arr arrow.Array
		err error
	)
	switch st {
	case dtype.U32:
		arr, err = intKernel[uint32](s, other, st, op, divErr)
	case dtype.I32:
		arr, err = intKernel[int32](s, other, st, op, divErr)
	case dtype.I64:
		arr, err = intKernel[int64](s, other, st, op, divErr)
	case dtype.F32:
		arr = floatKernel[float32](s, other, st, op)
	default:
		arr = floatKernel[float64](s, other, st, op)
	}
	if err != nil {
		return nil, err
	}

	return wrap(s.name, st, arr, s.mem), nil
}

// ArithmeticScalar applies op between every element and v.
func (s *Series) ArithmeticScalar(op ArithmeticOp, v dtype.Value) (*Series, error) {
	rhs := Full(s.name, v, s.Len(), s.mem)
	defer rhs.Release()
	return s.Arithmetic(op, rhs)
}

func intKernel[T constraints.Integer](s, other *Series, dt dtype.DataType, op ArithmeticOp, divErr bool) (arrow.Array, error) {
	l, r := numericAs[T](s.arr), numericAs[T](other.arr)
	out := make([]T, len(l))
	valid := zipValidity(s.arr, other.arr)

	for i := range l {
		if !valid[i] {
			continue
		}
		if op == Div && r[i] == 0 {
			if divErr {
				return nil, dferrors.NewDivisionByZeroError(op.String(), s.name)
			}
			valid[i] = false
			continue
		}
		out[i] = apply(op, l[i], r[i])
	}

	return buildArray(s.mem, dt, out, valid), nil
}

func floatKernel[T constraints.Float](s, other *Series, dt dtype.DataType, op ArithmeticOp) arrow.Array {
	l, r := numericAs[T](s.arr), numericAs[T](other.arr)
	out := make([]T, len(l))
	valid := zipValidity(s.arr, other.arr)

	for i := range l {
		if valid[i] {
			out[i] = apply(op, l[i], r[i])
		}
	}

	return buildArray(s.mem, dt, out, valid)
}

func apply[T number](op ArithmeticOp, a, b T) T {
	switch op {
	case Add:
		return a + b
	case Sub:
		return a - b
	case Mul:
		return a * b
	default:
		return a / b
	}
}
