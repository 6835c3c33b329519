// Package dataframe provides the columnar DataFrame and its hash join.
//
// A DataFrame is an ordered set of equally long, uniquely named Series.
// Operations never modify their receiver: they return a new DataFrame whose
// columns are either freshly built or shared with the source through Arrow
// reference counting, so every DataFrame must be released independently.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/series"
	"github.com/paveg/colframe/internal/validation"
)

// DataFrame represents a table of data with typed columns
type DataFrame struct {
	columns []*series.Series
	index   map[string]int // column name -> position in columns
}

// Field is one entry of a DataFrame schema.
type Field struct {
	Name     string
	DataType dtype.DataType
}

func (f Field) String() string {
	return f.Name + ": " + f.DataType.String()
}

// New creates a DataFrame from the given columns, taking ownership of them.
// It fails with a Schema error when two columns share a name or when the
// columns differ in length; on failure the caller keeps ownership.
func New(columns ...*series.Series) (*DataFrame, error) {
	names := make([]string, len(columns))
	for i, s := range columns {
		names[i] = s.Name()
	}
	if err := validation.ValidateUniqueNames("New", names...); err != nil {
		return nil, err
	}
	for _, s := range columns[min(1, len(columns)):] {
		if err := validation.ValidateLength(columns[0].Len(), s.Len(), "New", s.Name()); err != nil {
			return nil, err
		}
	}
	return build(columns), nil
}

// build assembles a DataFrame from columns already known to be consistent.
func build(columns []*series.Series) *DataFrame {
	index := make(map[string]int, len(columns))
	for i, s := range columns {
		index[s.Name()] = i
	}
	return &DataFrame{columns: columns, index: index}
}

// shared returns the columns at the given positions with an extra reference.
func (df *DataFrame) shared(positions []int) []*series.Series {
	out := make([]*series.Series, len(positions))
	for i, p := range positions {
		s := df.columns[p]
		s.Retain()
		out[i] = s
	}
	return out
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	names := make([]string, len(df.columns))
	for i, s := range df.columns {
		names[i] = s.Name()
	}
	return names
}

// Len returns the number of rows. A DataFrame without columns has no rows.
func (df *DataFrame) Len() int {
	if len(df.columns) == 0 {
		return 0
	}
	return df.columns[0].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Schema returns the column names and types in order
func (df *DataFrame) Schema() []Field {
	fields := make([]Field, len(df.columns))
	for i, s := range df.columns {
		fields[i] = Field{Name: s.Name(), DataType: s.DataType()}
	}
	return fields
}

// Column returns the series for the given column name. The Series is owned
// by the DataFrame; call Retain to keep it beyond the DataFrame's lifetime.
func (df *DataFrame) Column(name string) (*series.Series, bool) {
	i, ok := df.index[name]
	if !ok {
		return nil, false
	}
	return df.columns[i], true
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.index[name]
	return ok
}

// Select returns a new DataFrame with the named columns in the requested
// order. Every name must exist.
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	if err := validation.ValidateColumns(df, "Select", names...); err != nil {
		return nil, err
	}
	if err := validation.ValidateUniqueNames("Select", names...); err != nil {
		return nil, err
	}

	positions := make([]int, len(names))
	for i, name := range names {
		positions[i] = df.index[name]
	}
	return build(df.shared(positions)), nil
}

// Drop returns a new DataFrame without the specified columns. Names that do
// not exist are ignored.
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	positions := make([]int, 0, len(df.columns))
	for i, s := range df.columns {
		if !dropSet[s.Name()] {
			positions = append(positions, i)
		}
	}
	return build(df.shared(positions))
}

// Rename returns a new DataFrame with column oldName called newName.
func (df *DataFrame) Rename(oldName, newName string) (*DataFrame, error) {
	pos, ok := df.index[oldName]
	if !ok {
		return nil, dferrors.NewColumnNotFoundError("Rename", oldName)
	}
	if other, taken := df.index[newName]; taken && other != pos {
		return nil, dferrors.NewDuplicateColumnError("Rename", newName)
	}

	columns := make([]*series.Series, len(df.columns))
	for i, s := range df.columns {
		if i == pos {
			columns[i] = s.Rename(newName)
			continue
		}
		s.Retain()
		columns[i] = s
	}
	return build(columns), nil
}

// WithColumn returns a new DataFrame where s replaces the column of the same
// name, or is appended when no such column exists. It takes ownership of s on
// success. The length of s must equal Len unless the DataFrame has no columns.
func (df *DataFrame) WithColumn(s *series.Series) (*DataFrame, error) {
	if len(df.columns) > 0 {
		if err := validation.ValidateLength(df.Len(), s.Len(), "WithColumn", s.Name()); err != nil {
			return nil, err
		}
	}

	columns := make([]*series.Series, 0, len(df.columns)+1)
	replaced := false
	for _, c := range df.columns {
		if c.Name() == s.Name() {
			columns = append(columns, s)
			replaced = true
			continue
		}
		c.Retain()
		columns = append(columns, c)
	}
	if !replaced {
		columns = append(columns, s)
	}
	return build(columns), nil
}

// ConcatHorizontal returns the columns of df followed by those of other. Both
// must have the same number of rows and no column name in common.
func (df *DataFrame) ConcatHorizontal(other *DataFrame) (*DataFrame, error) {
	if df.Width() > 0 && other.Width() > 0 && df.Len() != other.Len() {
		return nil, dferrors.NewLengthMismatchError("ConcatHorizontal", "", df.Len(), other.Len())
	}
	if err := validation.ValidateUniqueNames("ConcatHorizontal", append(df.Columns(), other.Columns()...)...); err != nil {
		return nil, err
	}

	columns := append(df.shared(positions(df.Width())), other.shared(positions(other.Width()))...)
	return build(columns), nil
}

// VStack returns the rows of df followed by the rows of other. Both must have
// the same column names and data types in the same order.
func (df *DataFrame) VStack(other *DataFrame) (*DataFrame, error) {
	if err := df.checkSameSchema("VStack", other); err != nil {
		return nil, err
	}

	return df.mapColumns(func(i int, s *series.Series) (*series.Series, error) {
		return s.Append(other.columns[i])
	})
}

// checkSameSchema reports the first column where df and other disagree.
func (df *DataFrame) checkSameSchema(op string, other *DataFrame) error {
	if df.Width() != other.Width() {
		return &dferrors.DataFrameError{
			Kind:    dferrors.KindSchema,
			Op:      op,
			Message: fmt.Sprintf("column count differs: %d vs %d", df.Width(), other.Width()),
		}
	}
	for i, s := range df.columns {
		o := other.columns[i]
		if s.Name() != o.Name() {
			return &dferrors.DataFrameError{
				Kind:    dferrors.KindSchema,
				Op:      op,
				Column:  s.Name(),
				Message: fmt.Sprintf("column %d is named %q in the other frame", i, o.Name()),
			}
		}
		if s.DataType() != o.DataType() {
			return dferrors.NewTypeMismatchError(op, s.Name(), s.DataType().String(), o.DataType().String())
		}
	}
	return nil
}

// Filter keeps the rows where mask is true. Null mask entries drop the row.
func (df *DataFrame) Filter(mask *series.Series) (*DataFrame, error) {
	if mask.DataType() != dtype.Boolean {
		return nil, dferrors.NewTypeMismatchError("Filter", mask.Name(), mask.DataType().String(), dtype.Boolean.String())
	}
	if err := validation.ValidateLength(df.Len(), mask.Len(), "Filter", mask.Name()); err != nil {
		return nil, err
	}
	return df.takeRows(series.MaskIndices(mask), false)
}

// Take returns the rows at indices, in order. Indices may repeat.
func (df *DataFrame) Take(indices []int) (*DataFrame, error) {
	return df.takeRows(indices, false)
}

func (df *DataFrame) takeRows(indices []int, allowNullIndex bool) (*DataFrame, error) {
	return df.mapColumns(func(_ int, s *series.Series) (*series.Series, error) {
		return s.Take(indices, allowNullIndex)
	})
}

// Slice returns length rows starting at offset, sharing the column data.
func (df *DataFrame) Slice(offset, length int) (*DataFrame, error) {
	return df.mapColumns(func(_ int, s *series.Series) (*series.Series, error) {
		return s.Slice(offset, length)
	})
}

// Head returns the first n rows
func (df *DataFrame) Head(n int) *DataFrame {
	n = max(0, min(n, df.Len()))
	out, _ := df.Slice(0, n)
	return out
}

// Tail returns the last n rows
func (df *DataFrame) Tail(n int) *DataFrame {
	n = max(0, min(n, df.Len()))
	out, _ := df.Slice(df.Len()-n, n)
	return out
}

// mapColumns builds a new DataFrame by applying fn to every column. Columns
// already produced are released if fn fails.
func (df *DataFrame) mapColumns(fn func(int, *series.Series) (*series.Series, error)) (*DataFrame, error) {
	columns := make([]*series.Series, 0, len(df.columns))
	for i, s := range df.columns {
		out, err := fn(i, s)
		if err != nil {
			releaseAll(columns)
			return nil, err
		}
		columns = append(columns, out)
	}
	return build(columns), nil
}

// String returns a schema summary of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	for _, f := range df.Schema() {
		parts = append(parts, "  "+f.String())
	}

	return strings.Join(parts, "\n")
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	releaseAll(df.columns)
}

func releaseAll(columns []*series.Series) {
	for _, s := range columns {
		s.Release()
	}
}

func positions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
