package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/dtype"
	"golang.org/x/exp/constraints"
)

// number is the set of Go types numeric kernels run in.
type number interface {
	constraints.Integer | constraints.Float
}

func newBuilder(mem memory.Allocator, dt dtype.DataType) array.Builder {
	return array.NewBuilder(mem, dt.ArrowType())
}

// appendValue appends v to a builder of v's type. Null values append a null.
func appendValue(b array.Builder, v dtype.Value) {
	if v.IsNull() {
		b.AppendNull()
		return
	}

	switch bb := b.(type) {
	case *array.BooleanBuilder:
		bb.Append(v.Any().(bool))
	case *array.Uint32Builder:
		bb.Append(v.Any().(uint32))
	case *array.Int32Builder:
		bb.Append(v.Any().(int32))
	case *array.Int64Builder:
		bb.Append(v.Any().(int64))
	case *array.Float32Builder:
		bb.Append(v.Any().(float32))
	case *array.Float64Builder:
		bb.Append(v.Any().(float64))
	case *array.StringBuilder:
		bb.Append(v.Any().(string))
	case *array.Date32Builder:
		bb.Append(v.Any().(arrow.Date32))
	case *array.Time64Builder:
		bb.Append(v.Any().(arrow.Time64))
	default:
		b.AppendNull()
	}
}

// valueAt reads element i of arr as a Value.
func valueAt(arr arrow.Array, dt dtype.DataType, i int) dtype.Value {
	if arr.IsNull(i) {
		return dtype.NullOf(dt)
	}

	switch a := arr.(type) {
	case *array.Boolean:
		return dtype.ValueOf(a.Value(i))
	case *array.Uint32:
		return dtype.ValueOf(a.Value(i))
	case *array.Int32:
		return dtype.ValueOf(a.Value(i))
	case *array.Int64:
		return dtype.ValueOf(a.Value(i))
	case *array.Float32:
		return dtype.ValueOf(a.Value(i))
	case *array.Float64:
		return dtype.ValueOf(a.Value(i))
	case *array.String:
		return dtype.ValueOf(a.Value(i))
	case *array.Date32:
		return dtype.ValueOf(a.Value(i))
	case *array.Time64:
		return dtype.ValueOf(a.Value(i))
	default:
		return dtype.NullOf(dt)
	}
}

// buildArray builds an array of type dt from a typed slice. A nil valid slice
// marks every element valid.
func buildArray[T any](mem memory.Allocator, dt dtype.DataType, values []T, valid []bool) arrow.Array {
	if dt == dtype.Null {
		return array.NewNull(len(values))
	}

	b := newBuilder(mem, dt)
	defer b.Release()

	switch bb := b.(type) {
	case *array.BooleanBuilder:
		bb.AppendValues(any(values).([]bool), valid)
	case *array.Uint32Builder:
		bb.AppendValues(any(values).([]uint32), valid)
	case *array.Int32Builder:
		bb.AppendValues(any(values).([]int32), valid)
	case *array.Int64Builder:
		bb.AppendValues(any(values).([]int64), valid)
	case *array.Float32Builder:
		bb.AppendValues(any(values).([]float32), valid)
	case *array.Float64Builder:
		bb.AppendValues(any(values).([]float64), valid)
	case *array.StringBuilder:
		bb.AppendValues(any(values).([]string), valid)
	case *array.Date32Builder:
		bb.AppendValues(any(values).([]arrow.Date32), valid)
	case *array.Time64Builder:
		bb.AppendValues(any(values).([]arrow.Time64), valid)
	default:
		panic(fmt.Sprintf("unsupported builder %T", b))
	}

	return b.NewArray()
}

// toSlice copies the physical values of arr. Values at null positions are
// unspecified.
func toSlice[T any](arr arrow.Array) []T {
	out := make([]T, arr.Len())

	switch dst := any(out).(type) {
	case []bool:
		a := arr.(*array.Boolean)
		for i := range dst {
			dst[i] = a.Value(i)
		}
	case []uint32:
		copy(dst, arr.(*array.Uint32).Uint32Values())
	case []int32:
		copy(dst, arr.(*array.Int32).Int32Values())
	case []int64:
		copy(dst, arr.(*array.Int64).Int64Values())
	case []float32:
		copy(dst, arr.(*array.Float32).Float32Values())
	case []float64:
		copy(dst, arr.(*array.Float64).Float64Values())
	case []string:
		a := arr.(*array.String)
		for i := range dst {
			dst[i] = a.Value(i)
		}
	case []arrow.Date32:
		copy(dst, arr.(*array.Date32).Date32Values())
	case []arrow.Time64:
		copy(dst, arr.(*array.Time64).Time64Values())
	default:
		panic(fmt.Sprintf("unsupported slice type %T", out))
	}

	return out
}

// numericAs reads a numeric array converting every element to T.
func numericAs[T number](arr arrow.Array) []T {
	switch a := arr.(type) {
	case *array.Uint32:
		return convertSlice[T](a.Uint32Values())
	case *array.Int32:
		return convertSlice[T](a.Int32Values())
	case *array.Int64:
		return convertSlice[T](a.Int64Values())
	case *array.Float32:
		return convertSlice[T](a.Float32Values())
	case *array.Float64:
		return convertSlice[T](a.Float64Values())
	default:
		panic(fmt.Sprintf("not a numeric array: %s", arr.DataType()))
	}
}

func convertSlice[T, S number](src []S) []T {
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = T(v)
	}
	return out
}

// zipValidity is the null-propagating zip shared by binary kernels: an output
// element is valid only where both inputs are valid.
func zipValidity(l, r arrow.Array) []bool {
	valid := make([]bool, l.Len())
	for i := range valid {
		valid[i] = l.IsValid(i) && r.IsValid(i)
	}
	return valid
}

// gather builds a new array from the rows of arr named by indices. A negative
// index produces a null.
func gather(mem memory.Allocator, dt dtype.DataType, arr arrow.Array, indices []int) arrow.Array {
	valid := make([]bool, len(indices))
	for j, idx := range indices {
		valid[j] = idx >= 0 && arr.IsValid(idx)
	}

	switch dt {
	case dtype.Null:
		return array.NewNull(len(indices))
	case dtype.Boolean:
		return gatherAs[bool](mem, dt, arr, indices, valid)
	case dtype.U32:
		return gatherAs[uint32](mem, dt, arr, indices, valid)
	case dtype.I32:
		return gatherAs[int32](mem, dt, arr, indices, valid)
	case dtype.I64:
		return gatherAs[int64](mem, dt, arr, indices, valid)
	case dtype.F32:
		return gatherAs[float32](mem, dt, arr, indices, valid)
	case dtype.F64:
		return gatherAs[float64](mem, dt, arr, indices, valid)
	case dtype.Utf8:
		return gatherAs[string](mem, dt, arr, indices, valid)
	case dtype.Date:
		return gatherAs[arrow.Date32](mem, dt, arr, indices, valid)
	default:
		return gatherAs[arrow.Time64](mem, dt, arr, indices, valid)
	}
}

func gatherAs[T any](mem memory.Allocator, dt dtype.DataType, arr arrow.Array, indices []int, valid []bool) arrow.Array {
	src := toSlice[T](arr)
	out := make([]T, len(indices))
	for j, idx := range indices {
		if idx >= 0 {
			out[j] = src[idx]
		}
	}
	return buildArray(mem, dt, out, valid)
}
