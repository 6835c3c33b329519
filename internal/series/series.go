// Package series provides the typed, nullable column used by DataFrame.
//
// A Series pairs a name and a dtype.DataType with an immutable Apache Arrow
// array. The Arrow array holds both the value buffer and the validity bitmap,
// so every element read consults validity first. Operations never mutate their
// inputs: each derived Series is built through a fresh Arrow builder, except
// Rename and Slice which share the underlying array through Arrow reference
// counting. Cast to the Series' own type copies.
package series

import (
	"fmt"
	"iter"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/validation"
)

// Series represents a named, typed, nullable column with an Apache Arrow backend
type Series struct {
	name  string
	dtype dtype.DataType
	arr   arrow.Array
	mem   memory.Allocator
}

func allocator(mem memory.Allocator) memory.Allocator {
	if mem == nil {
		return memory.NewGoAllocator()
	}
	return mem
}

func wrap(name string, dt dtype.DataType, arr arrow.Array, mem memory.Allocator) *Series {
	return &Series{name: name, dtype: dt, arr: arr, mem: allocator(mem)}
}

// New creates a Series with no nulls from a slice of values. The DataType is
// derived from T.
func New[T dtype.Native](name string, values []T, mem memory.Allocator) *Series {
	mem = allocator(mem)
	dt := dtype.Of[T]()
	return wrap(name, dt, buildArray(mem, dt, values, nil), mem)
}

// NewWithValidity creates a Series whose element i is null when valid[i] is
// false. The value at a null position is ignored.
func NewWithValidity[T dtype.Native](name string, values []T, valid []bool, mem memory.Allocator) (*Series, error) {
	if len(values) != len(valid) {
		return nil, dferrors.NewLengthMismatchError("NewWithValidity", name, len(values), len(valid))
	}
	mem = allocator(mem)
	dt := dtype.Of[T]()
	return wrap(name, dt, buildArray(mem, dt, values, valid), mem), nil
}

// NewFromValues creates a Series of type dt from scalar values. Values of a
// different type are cast to dt; a value that cannot be represented fails the
// whole construction.
func NewFromValues(name string, dt dtype.DataType, values []dtype.Value, mem memory.Allocator) (*Series, error) {
	mem = allocator(mem)
	policy := castOptionsFromConfig().Overflow

	b := newBuilder(mem, dt)
	defer b.Release()
	b.Reserve(len(values))

	for _, v := range values {
		if v.DataType() != dt && !v.IsNull() {
			cast, err := dtype.CastValue(v, dt, policy)
			if err != nil {
				return nil, err
			}
			v = cast
		}
		appendValue(b, v)
	}
	return wrap(name, dt, b.NewArray(), mem), nil
}

// NewNull creates a Series of type Null with n elements, all null.
func NewNull(name string, n int) *Series {
	return wrap(name, dtype.Null, array.NewNull(n), nil)
}

// Full creates a Series repeating v n times. A null v gives an all-null Series
// of v's type.
func Full(name string, v dtype.Value, n int, mem memory.Allocator) *Series {
	if v.DataType() == dtype.Null {
		return NewNull(name, n)
	}
	mem = allocator(mem)
	b := newBuilder(mem, v.DataType())
	defer b.Release()
	b.Reserve(n)
	for range n {
		appendValue(b, v)
	}
	return wrap(name, v.DataType(), b.NewArray(), mem)
}

// FromArray wraps an existing Arrow array. The Series takes its own reference.
func FromArray(name string, arr arrow.Array) (*Series, error) {
	dt, err := dtype.FromArrow(arr.DataType())
	if err != nil {
		return nil, err
	}
	arr.Retain()
	return wrap(name, dt, arr, nil), nil
}

// Name returns the column name
func (s *Series) Name() string {
	return s.name
}

// DataType returns the element type
func (s *Series) DataType() dtype.DataType {
	return s.dtype
}

// Len returns the length of the series
func (s *Series) Len() int {
	return s.arr.Len()
}

// NullCount returns the number of null elements
func (s *Series) NullCount() int {
	return s.arr.NullN()
}

// IsNull checks if the value at index i is null
func (s *Series) IsNull(i int) bool {
	return s.arr.IsNull(i)
}

// IsValid checks if the value at index i is not null
func (s *Series) IsValid(i int) bool {
	return s.arr.IsValid(i)
}

// Get returns the element at index i, or an Index error when i is out of range.
func (s *Series) Get(i int) (dtype.Value, error) {
	if err := validation.ValidateIndex(i, s.Len(), "Get"); err != nil {
		return dtype.Value{}, err
	}
	return valueAt(s.arr, s.dtype, i), nil
}

// Iter yields every element in order. Null elements surface as null Values.
func (s *Series) Iter() iter.Seq[dtype.Value] {
	return func(yield func(dtype.Value) bool) {
		for i := range s.Len() {
			if !yield(valueAt(s.arr, s.dtype, i)) {
				return
			}
		}
	}
}

// All yields index and element pairs in order.
func (s *Series) All() iter.Seq2[int, dtype.Value] {
	return func(yield func(int, dtype.Value) bool) {
		for i := range s.Len() {
			if !yield(i, valueAt(s.arr, s.dtype, i)) {
				return
			}
		}
	}
}

// Values returns the data as a Go slice. Null positions hold the zero value of
// T; use Validity to tell them apart.
func Values[T dtype.Native](s *Series) ([]T, error) {
	if want := dtype.Of[T](); want != s.dtype {
		return nil, dferrors.NewTypeMismatchError("Values", s.name, s.dtype.String(), want.String())
	}
	out := toSlice[T](s.arr)
	if s.arr.NullN() > 0 {
		var zero T
		for i := range out {
			if s.arr.IsNull(i) {
				out[i] = zero
			}
		}
	}
	return out, nil
}

// Validity returns one flag per element, true where the element is not null.
func (s *Series) Validity() []bool {
	valid := make([]bool, s.Len())
	for i := range valid {
		valid[i] = s.arr.IsValid(i)
	}
	return valid
}

// Array returns the underlying Arrow array with an extra reference; the caller
// must Release it.
func (s *Series) Array() arrow.Array {
	s.arr.Retain()
	return s.arr
}

// Allocator returns the allocator used for derived Series.
func (s *Series) Allocator() memory.Allocator {
	return s.mem
}

// Rename returns a Series with the given name sharing this Series' data.
func (s *Series) Rename(name string) *Series {
	s.arr.Retain()
	return wrap(name, s.dtype, s.arr, s.mem)
}

// Retain adds a reference to the underlying data
func (s *Series) Retain() {
	s.arr.Retain()
}

// Release releases one reference to the underlying data
func (s *Series) Release() {
	s.arr.Release()
}

// String returns a short representation of the series
func (s *Series) String() string {
	const preview = 10

	var sb strings.Builder
	fmt.Fprintf(&sb, "Series[%s](%s, len=%d): [", s.dtype, s.name, s.Len())
	for i := range min(s.Len(), preview) {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valueAt(s.arr, s.dtype, i).String())
	}
	if s.Len() > preview {
		sb.WriteString(", ...")
	}
	sb.WriteString("]")
	return sb.String()
}
