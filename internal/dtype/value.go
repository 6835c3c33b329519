package dtype

import (
	"fmt"
	"math"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	dferrors "github.com/paveg/colframe/internal/errors"
)

// Native is the set of Go types that back a DataType.
type Native interface {
	bool | uint32 | int32 | int64 | float32 | float64 | string | arrow.Date32 | arrow.Time64
}

// Of returns the DataType backed by the Go type T.
func Of[T Native]() DataType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Boolean
	case uint32:
		return U32
	case int32:
		return I32
	case int64:
		return I64
	case float32:
		return F32
	case float64:
		return F64
	case string:
		return Utf8
	case arrow.Date32:
		return Date
	default:
		return Time
	}
}

// Value is a single element of a Series. A null Value carries its type but
// no payload.
type Value struct {
	dtype DataType
	v     any
}

// NullOf returns the null Value of type dt.
func NullOf(dt DataType) Value {
	return Value{dtype: dt}
}

// ValueOf wraps a native Go value.
func ValueOf[T Native](v T) Value {
	return Value{dtype: Of[T](), v: v}
}

// NewValue coerces a Go value into a Value of type dt. A nil v gives a null.
func NewValue(dt DataType, v any) (Value, error) {
	if v == nil || dt == Null {
		return NullOf(dt), nil
	}
	if val, ok := v.(Value); ok {
		return CastValue(val, dt, OverflowWrap)
	}

	switch dt {
	case Boolean:
		if b, ok := v.(bool); ok {
			return Value{dtype: dt, v: b}, nil
		}
	case Utf8:
		if s, ok := v.(string); ok {
			return Value{dtype: dt, v: s}, nil
		}
	case Date:
		if d, ok := v.(arrow.Date32); ok {
			return Value{dtype: dt, v: d}, nil
		}
	case Time:
		if t, ok := v.(arrow.Time64); ok {
			return Value{dtype: dt, v: t}, nil
		}
	}

	if i, ok := toInt64(v); ok {
		return fromInteger(i, dt, OverflowWrap), nil
	}
	if f, ok := toFloat64(v); ok {
		return fromFloat(f, dt), nil
	}
	return Value{}, dferrors.NewUnsupportedTypeError("NewValue", fmt.Sprintf("%T as %s", v, dt))
}

// DataType returns the type of the Value
func (v Value) DataType() DataType {
	return v.dtype
}

// IsNull reports whether the Value is null
func (v Value) IsNull() bool {
	return v.v == nil
}

// Any returns the native payload, or nil for null.
func (v Value) Any() any {
	return v.v
}

// Int64 returns the value as int64 for integer, Boolean and temporal types.
func (v Value) Int64() (int64, bool) {
	if v.v == nil {
		return 0, false
	}
	return toInt64(v.v)
}

// Float64 returns the value as float64 for numeric types.
func (v Value) Float64() (float64, bool) {
	if v.v == nil {
		return 0, false
	}
	if f, ok := toFloat64(v.v); ok {
		return f, true
	}
	if i, ok := toInt64(v.v); ok {
		return float64(i), true
	}
	return 0, false
}

// Str returns the payload of a Utf8 value.
func (v Value) Str() (string, bool) {
	s, ok := v.v.(string)
	return s, ok
}

// Bool returns the payload of a Boolean value.
func (v Value) Bool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok
}

// String formats the value; null renders as "null".
func (v Value) String() string {
	if v.v == nil {
		return "null"
	}
	return format(v)
}

// format renders a non-null value the way casts to Utf8 do.
func format(v Value) string {
	switch x := v.v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case arrow.Date32:
		return x.ToTime().Format(DateLayout)
	case arrow.Time64:
		if !ValidTimeOfDay(x) {
			return strconv.FormatInt(int64(x), 10) + "ns"
		}
		return x.ToTime(arrow.Nanosecond).Format(TimeLayout)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// toInt64 converts Go integer kinds, Boolean and temporal payloads.
func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true //nolint:gosec // wraps by policy
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true //nolint:gosec // wraps by policy
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case arrow.Date32:
		return int64(x), true
	case arrow.Time64:
		return int64(x), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// fitsInt reports whether f truncates into the half-open range [lo, hi).
func fitsInt(f, lo, hi float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	t := math.Trunc(f)
	return t >= lo && t < hi
}
