// Package dtype defines the closed set of element encodings a Series can hold,
// their Arrow physical types, and the static rules that relate them: cast
// compatibility, numeric promotion and join-key compatibility.
package dtype

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	dferrors "github.com/paveg/colframe/internal/errors"
)

// DataType identifies the element encoding of a Series.
type DataType uint8

const (
	Null DataType = iota
	Boolean
	U32
	I32
	I64
	F32
	F64
	Utf8
	Date // days since the Unix epoch
	Time // nanoseconds since midnight
)

// All lists every supported DataType in declaration order.
var All = []DataType{Null, Boolean, U32, I32, I64, F32, F64, Utf8, Date, Time}

// String returns the string representation of the DataType
func (d DataType) String() string {
	switch d {
	case Null:
		return "Null"
	case Boolean:
		return "Boolean"
	case U32:
		return "U32"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case F32:
		return "F32"
	case F64:
		return "F64"
	case Utf8:
		return "Utf8"
	case Date:
		return "Date"
	case Time:
		return "Time"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(d))
	}
}

// NumericTypes lists the integer and floating point types.
func NumericTypes() []DataType {
	return []DataType{U32, I32, I64, F32, F64}
}

// IsNumeric returns true for integer and floating point types
func (d DataType) IsNumeric() bool {
	return d.IsInteger() || d.IsFloat()
}

// IsInteger returns true for integer types
func (d DataType) IsInteger() bool {
	return d == U32 || d == I32 || d == I64
}

// IsFloat returns true for floating point types
func (d DataType) IsFloat() bool {
	return d == F32 || d == F64
}

// IsTemporal returns true for Date and Time
func (d DataType) IsTemporal() bool {
	return d == Date || d == Time
}

// IsOrderable reports whether Min/Max are defined for the type.
func (d DataType) IsOrderable() bool {
	return d != Null && d <= Time
}

// ArrowType returns the Arrow physical type backing the DataType.
func (d DataType) ArrowType() arrow.DataType {
	switch d {
	case Null:
		return arrow.Null
	case Boolean:
		return arrow.FixedWidthTypes.Boolean
	case U32:
		return arrow.PrimitiveTypes.Uint32
	case I32:
		return arrow.PrimitiveTypes.Int32
	case I64:
		return arrow.PrimitiveTypes.Int64
	case F32:
		return arrow.PrimitiveTypes.Float32
	case F64:
		return arrow.PrimitiveTypes.Float64
	case Utf8:
		return arrow.BinaryTypes.String
	case Date:
		return arrow.FixedWidthTypes.Date32
	case Time:
		return arrow.FixedWidthTypes.Time64ns
	default:
		panic(fmt.Sprintf("unsupported data type: %s", d))
	}
}

// FromArrow maps an Arrow type onto a DataType.
func FromArrow(t arrow.DataType) (DataType, error) {
	switch t.ID() {
	case arrow.NULL:
		return Null, nil
	case arrow.BOOL:
		return Boolean, nil
	case arrow.UINT32:
		return U32, nil
	case arrow.INT32:
		return I32, nil
	case arrow.INT64:
		return I64, nil
	case arrow.FLOAT32:
		return F32, nil
	case arrow.FLOAT64:
		return F64, nil
	case arrow.STRING:
		return Utf8, nil
	case arrow.DATE32:
		return Date, nil
	case arrow.TIME64:
		if t.(*arrow.Time64Type).Unit == arrow.Nanosecond {
			return Time, nil
		}
	}
	return Null, dferrors.NewUnsupportedTypeError("FromArrow", t.String())
}

// CanCast reports whether a Series of type from can be cast to type to.
// The relation is static; a legal cast may still null individual values.
func CanCast(from, to DataType) bool {
	switch {
	case from == to, from == Null, to == Null, to == Utf8, from == Utf8:
		return true
	case from.IsNumeric() && to.IsNumeric():
		return true
	case from == Boolean:
		return to.IsNumeric()
	case to == Boolean:
		return from.IsNumeric()
	case from.IsTemporal():
		return to.IsNumeric()
	case to.IsTemporal():
		return from.IsNumeric()
	}
	return false
}

// Supertype returns the result type of arithmetic between a and b.
//
//	same           -> same
//	U32 with I32   -> I64
//	any int w/ I64 -> I64
//	F32 with F32   -> F32
//	float w/ other -> F64
func Supertype(a, b DataType) (DataType, bool) {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Null, false
	}
	if a == b {
		return a, true
	}
	if a.IsFloat() || b.IsFloat() {
		return F64, true
	}
	return I64, true
}

// ComparisonType returns the type both sides are compared in.
func ComparisonType(a, b DataType) (DataType, bool) {
	if st, ok := Supertype(a, b); ok {
		return st, true
	}
	if a == b {
		return a, true
	}
	return Null, false
}

// JoinCompatible returns the type join keys are hashed in: identical types
// join as-is and numeric types join in their supertype.
func JoinCompatible(a, b DataType) (DataType, bool) {
	return ComparisonType(a, b)
}
