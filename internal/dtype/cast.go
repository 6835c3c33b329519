package dtype

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	dferrors "github.com/paveg/colframe/internal/errors"
)

// Text layouts used when casting temporal values to and from Utf8.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05.999999999"
)

// nanosPerDay bounds Time payloads: a time of day lies in [0, nanosPerDay).
const nanosPerDay = int64(24 * time.Hour)

// ValidTimeOfDay reports whether t is a time of day. Casts null out anything
// else rather than wrapping it onto the clock.
func ValidTimeOfDay(t arrow.Time64) bool {
	return t >= 0 && int64(t) < nanosPerDay
}

// OverflowPolicy decides what an integer narrowing cast does with a value
// that does not fit the target type.
type OverflowPolicy int

const (
	// OverflowWrap keeps the low-order bits, as Go conversions do.
	OverflowWrap OverflowPolicy = iota
	// OverflowNull turns the element into null.
	OverflowNull
)

// ParseOverflowPolicy maps "wrap" and "null" onto an OverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, bool) {
	switch strings.ToLower(s) {
	case "wrap", "":
		return OverflowWrap, true
	case "null":
		return OverflowNull, true
	default:
		return OverflowWrap, false
	}
}

// CastValue converts one element to type to. Unparseable text fails with a
// Cast error wrapping errors.ErrParseFailure; a statically illegal cast fails
// with an UnsupportedOperation error. Null casts to the null of the target.
func CastValue(v Value, to DataType, policy OverflowPolicy) (Value, error) {
	if !CanCast(v.dtype, to) {
		return Value{}, dferrors.NewUnsupportedTypeError("Cast", v.dtype.String()+" to "+to.String())
	}
	if v.v == nil || to == Null {
		return NullOf(to), nil
	}
	if v.dtype == to {
		return v, nil
	}
	if t, ok := v.v.(arrow.Time64); ok && !ValidTimeOfDay(t) {
		return NullOf(to), nil
	}
	if to == Utf8 {
		return Value{dtype: to, v: format(v)}, nil
	}

	switch x := v.v.(type) {
	case string:
		return parse(x, to)
	case float32:
		return fromFloat(float64(x), to), nil
	case float64:
		return fromFloat(x, to), nil
	}

	i, _ := toInt64(v.v)
	return fromInteger(i, to, policy), nil
}

// fromInteger converts an integer-like payload (integers, Boolean, Date days,
// Time nanoseconds) into type to.
func fromInteger(i int64, to DataType, policy OverflowPolicy) Value {
	switch to {
	case Boolean:
		return Value{dtype: to, v: i != 0}
	case U32:
		if i < 0 || i > math.MaxUint32 {
			if policy == OverflowNull {
				return NullOf(to)
			}
		}
		return Value{dtype: to, v: uint32(i)} //nolint:gosec // wraps by policy
	case I32, Date:
		if i < math.MinInt32 || i > math.MaxInt32 {
			if policy == OverflowNull {
				return NullOf(to)
			}
		}
		if to == Date {
			return Value{dtype: to, v: arrow.Date32(int32(i))} //nolint:gosec // wraps by policy
		}
		return Value{dtype: to, v: int32(i)} //nolint:gosec // wraps by policy
	case I64:
		return Value{dtype: to, v: i}
	case Time:
		if !ValidTimeOfDay(arrow.Time64(i)) {
			return NullOf(to)
		}
		return Value{dtype: to, v: arrow.Time64(i)}
	case F32:
		return Value{dtype: to, v: float32(i)}
	case F64:
		return Value{dtype: to, v: float64(i)}
	case Utf8:
		return Value{dtype: to, v: strconv.FormatInt(i, 10)}
	default:
		return NullOf(to)
	}
}

// fromFloat converts a float payload. Conversions to integer types truncate
// toward zero; NaN, infinities and out-of-range values become null.
func fromFloat(f float64, to DataType) Value {
	switch to {
	case Boolean:
		return Value{dtype: to, v: f != 0}
	case F32:
		return Value{dtype: to, v: float32(f)}
	case F64:
		return Value{dtype: to, v: f}
	case U32:
		if !fitsInt(f, 0, 1<<32) {
			return NullOf(to)
		}
		return Value{dtype: to, v: uint32(f)}
	case I32, Date:
		if !fitsInt(f, math.MinInt32, 1<<31) {
			return NullOf(to)
		}
		if to == Date {
			return Value{dtype: to, v: arrow.Date32(int32(f))}
		}
		return Value{dtype: to, v: int32(f)}
	case I64:
		if !fitsInt(f, math.MinInt64, 1<<63) {
			return NullOf(to)
		}
		return Value{dtype: to, v: int64(f)}
	case Time:
		if !fitsInt(f, 0, float64(nanosPerDay)) {
			return NullOf(to)
		}
		return Value{dtype: to, v: arrow.Time64(int64(f))}
	case Utf8:
		return Value{dtype: to, v: strconv.FormatFloat(f, 'g', -1, 64)}
	default:
		return NullOf(to)
	}
}

// parse converts text into type to.
func parse(s string, to DataType) (Value, error) {
	text := strings.TrimSpace(s)
	switch to {
	case Utf8:
		return Value{dtype: to, v: s}, nil
	case Boolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return NullOf(to), dferrors.NewParseError(s, to.String(), err)
		}
		return Value{dtype: to, v: b}, nil
	case U32:
		u, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return NullOf(to), dferrors.NewParseError(s, to.String(), err)
		}
		return Value{dtype: to, v: uint32(u)}, nil
	case I32:
		i, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return NullOf(to), dferrors.NewParseError(s, to.String(), err)
		}
		return Value{dtype: to, v: int32(i)}, nil
	case I64:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return NullOf(to), dferrors.NewParseError(s, to.String(), err)
		}
		return Value{dtype: to, v: i}, nil
	case F32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return NullOf(to), dferrors.NewParseError(s, to.String(), err)
		}
		return Value{dtype: to, v: float32(f)}, nil
	case F64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return NullOf(to), dferrors.NewParseError(s, to.String(), err)
		}
		return Value{dtype: to, v: f}, nil
	case Date:
		t, err := time.Parse(DateLayout, text)
		if err != nil {
			return NullOf(to), dferrors.NewParseError(s, to.String(), err)
		}
		return Value{dtype: to, v: arrow.Date32FromTime(t)}, nil
	case Time:
		t, err := time.Parse(TimeLayout, text)
		if err != nil {
			return NullOf(to), dferrors.NewParseError(s, to.String(), err)
		}
		ns := int64(t.Hour())*int64(time.Hour) + int64(t.Minute())*int64(time.Minute) +
			int64(t.Second())*int64(time.Second) + int64(t.Nanosecond())
		return Value{dtype: to, v: arrow.Time64(ns)}, nil
	default:
		return NullOf(to), nil
	}
}

// DateOf converts a calendar time into a Date payload.
func DateOf(t time.Time) arrow.Date32 {
	return arrow.Date32FromTime(t)
}

// TimeOf converts a clock time into a Time payload.
func TimeOf(hour, minute, sec, nsec int) arrow.Time64 {
	return arrow.Time64(int64(hour)*int64(time.Hour) + int64(minute)*int64(time.Minute) +
		int64(sec)*int64(time.Second) + int64(nsec))
}
