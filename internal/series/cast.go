package series

import (
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
)

// CastOptions controls value-level behaviour of Cast.
type CastOptions struct {
	// Overflow decides what an integer narrowing cast does with values that
	// do not fit the target type.
	Overflow dtype.OverflowPolicy
}

// clone copies the Series into freshly built buffers.
func (s *Series) clone() *Series {
	indices := make([]int, s.Len())
	for i := range indices {
		indices[i] = i
	}
	return wrap(s.name, s.dtype, gather(s.mem, s.dtype, s.arr, indices), s.mem)
}

// castOptionsFromConfig reads the cast policy from the global configuration.
func castOptionsFromConfig() CastOptions {
	policy, _ := dtype.ParseOverflowPolicy(config.GetGlobalConfig().CastOverflow)
	return CastOptions{Overflow: policy}
}

// Cast converts the Series to type to using the configured overflow policy.
func (s *Series) Cast(to dtype.DataType) (*Series, error) {
	return s.CastWithOptions(to, castOptionsFromConfig())
}

// CastWithOptions converts the Series to type to. A cast to the same type
// returns a copy that shares no buffers with s. Elements that cannot be
// represented in the target type (unparseable text, NaN to integer, overflow
// under OverflowNull) become null. It fails only when the cast is statically
// illegal.
func (s *Series) CastWithOptions(to dtype.DataType, opts CastOptions) (*Series, error) {
	if !dtype.CanCast(s.dtype, to) {
		return nil, &dferrors.DataFrameError{
			Kind:    dferrors.KindUnsupported,
			Op:      "Cast",
			Column:  s.name,
			Message: "cannot cast " + s.dtype.String() + " to " + to.String(),
		}
	}
	if s.dtype == to {
		return s.clone(), nil
	}
	if to == dtype.Null {
		return NewNull(s.name, s.Len()), nil
	}

	b := newBuilder(s.mem, to)
	defer b.Release()
	b.Reserve(s.Len())

	introduced := 0
	for i := range s.Len() {
		v := valueAt(s.arr, s.dtype, i)
		// Per-value failures already come back as the null of the target type.
		out, _ := dtype.CastValue(v, to, opts.Overflow)
		if out.IsNull() && !v.IsNull() {
			introduced++
		}
		appendValue(b, out)
	}

	if introduced > 0 {
		config.Logger().Debug("cast introduced nulls",
			"column", s.name, "from", s.dtype.String(), "to", to.String(), "nulls", introduced)
	}

	return wrap(s.name, to, b.NewArray(), s.mem), nil
}
