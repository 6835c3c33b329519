// Package colframe provides an in-memory columnar DataFrame library backed by
// Apache Arrow. This package is the sole public API for the library.
//
// A Series is a named, typed, nullable column; a DataFrame is an ordered set
// of equally long Series with unique names. Every operation returns a new
// value and leaves its inputs untouched. Series and DataFrames hold Arrow
// memory and must be released when no longer needed:
//
//	mem := memory.NewGoAllocator()
//	days := colframe.NewSeries("days", []int64{0, 1, 2}, mem)
//	temp := colframe.NewSeries("temp", []float64{22.1, 19.9, 7}, mem)
//	df, err := colframe.NewDataFrame(days, temp)
//	if err != nil {
//		return err
//	}
//	defer df.Release()
package colframe

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	cfio "github.com/paveg/colframe/internal/io"
	"github.com/paveg/colframe/internal/monitoring"
	"github.com/paveg/colframe/internal/series"
)

// Series is a named column of a single DataType.
type Series = series.Series

// DataType identifies the physical type of a Series.
type DataType = dtype.DataType

// Value is a single, possibly null, element.
type Value = dtype.Value

// Field is one entry of a DataFrame schema.
type Field = dataframe.Field

// Config holds the library-wide policies.
type Config = config.Config

// OperationMetrics describes one recorded operation.
type OperationMetrics = monitoring.OperationMetrics

// MetricsSummary aggregates the recorded operations.
type MetricsSummary = monitoring.MetricsSummary

// Supported data types
const (
	Null    = dtype.Null
	Boolean = dtype.Boolean
	U32     = dtype.U32
	I32     = dtype.I32
	I64     = dtype.I64
	F32     = dtype.F32
	F64     = dtype.F64
	Utf8    = dtype.Utf8
	Date    = dtype.Date
	Time    = dtype.Time
)

// Element-wise operators
const (
	Add = series.Add
	Sub = series.Sub
	Mul = series.Mul
	Div = series.Div

	Eq = series.Eq
	Ne = series.Ne
	Lt = series.Lt
	Le = series.Le
	Gt = series.Gt
	Ge = series.Ge

	Min  = series.Min
	Max  = series.Max
	Sum  = series.Sum
	Mean = series.Mean

	FillForward  = series.FillForward
	FillBackward = series.FillBackward
	FillMin      = series.FillMin
	FillMax      = series.FillMax
	FillMean     = series.FillMean
)

// Errors usable with errors.Is.
var (
	ErrSchema         = dferrors.ErrSchema
	ErrTypeMismatch   = dferrors.ErrTypeMismatch
	ErrCast           = dferrors.ErrCast
	ErrUnsupported    = dferrors.ErrUnsupported
	ErrIndex          = dferrors.ErrIndex
	ErrDivisionByZero = dferrors.ErrDivisionByZero
	ErrJoin           = dferrors.ErrJoin

	ErrMissingKeyColumn = dferrors.ErrMissingKeyColumn
	ErrKeyTypeMismatch  = dferrors.ErrKeyTypeMismatch
	ErrSchemaCollision  = dferrors.ErrSchemaCollision
)

// NewSeries creates a new typed Series from values.
func NewSeries[T dtype.Native](name string, values []T, mem memory.Allocator) *Series {
	return series.New(name, values, mem)
}

// NewSeriesWithValidity creates a Series where valid[i] == false marks a null.
func NewSeriesWithValidity[T dtype.Native](name string, values []T, valid []bool, mem memory.Allocator) (*Series, error) {
	return series.NewWithValidity(name, values, valid, mem)
}

// NewNullSeries creates a Series of n nulls with DataType Null.
func NewNullSeries(name string, n int) *Series {
	return series.NewNull(name, n)
}

// NewValue creates a Value of type dt from a Go value; nil gives null.
func NewValue(dt DataType, v any) (Value, error) {
	return dtype.NewValue(dt, v)
}

// JoinType represents the type of join operation
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	OuterJoin
)

// JoinOptions specifies parameters for join operations
type JoinOptions struct {
	Type     JoinType
	LeftKey  string // key column of the left DataFrame
	RightKey string // key column of the right DataFrame; defaults to LeftKey
	Suffix   string // appended to right columns whose name is already taken
}

// DataFrame is the public type for a DataFrame.
// It wraps the internal dataframe.DataFrame to hide implementation details.
type DataFrame struct {
	df *dataframe.DataFrame
}

func wrap(df *dataframe.DataFrame, err error) (*DataFrame, error) {
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: df}, nil
}

// NewDataFrame creates a DataFrame from columns, taking ownership of them.
// It fails when two columns share a name or differ in length.
func NewDataFrame(columns ...*Series) (*DataFrame, error) {
	return wrap(dataframe.New(columns...))
}

// Columns returns the column names in order.
func (d *DataFrame) Columns() []string {
	return d.df.Columns()
}

// Len returns the number of rows.
func (d *DataFrame) Len() int {
	return d.df.Len()
}

// Width returns the number of columns.
func (d *DataFrame) Width() int {
	return d.df.Width()
}

// Schema returns the column names and types in order.
func (d *DataFrame) Schema() []Field {
	return d.df.Schema()
}

// Column returns the column with the given name.
func (d *DataFrame) Column(name string) (*Series, bool) {
	return d.df.Column(name)
}

// HasColumn returns true if the DataFrame has the given column.
func (d *DataFrame) HasColumn(name string) bool {
	return d.df.HasColumn(name)
}

// Select returns a new DataFrame with the named columns in the given order.
func (d *DataFrame) Select(names ...string) (*DataFrame, error) {
	return wrap(d.df.Select(names...))
}

// Drop returns a new DataFrame without the specified columns.
func (d *DataFrame) Drop(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Drop(names...)}
}

// Rename returns a new DataFrame with one column renamed.
func (d *DataFrame) Rename(oldName, newName string) (*DataFrame, error) {
	return wrap(d.df.Rename(oldName, newName))
}

// WithColumn returns a new DataFrame with s added or replacing the column of
// the same name.
func (d *DataFrame) WithColumn(s *Series) (*DataFrame, error) {
	return wrap(d.df.WithColumn(s))
}

// ConcatHorizontal returns the columns of d followed by those of other.
func (d *DataFrame) ConcatHorizontal(other *DataFrame) (*DataFrame, error) {
	return wrap(d.df.ConcatHorizontal(other.df))
}

// VStack returns the rows of d followed by the rows of other.
func (d *DataFrame) VStack(other *DataFrame) (*DataFrame, error) {
	return wrap(d.df.VStack(other.df))
}

// Filter keeps the rows where mask is true.
func (d *DataFrame) Filter(mask *Series) (*DataFrame, error) {
	return wrap(d.df.Filter(mask))
}

// Take returns the rows at indices, in order.
func (d *DataFrame) Take(indices []int) (*DataFrame, error) {
	return wrap(d.df.Take(indices))
}

// Slice returns length rows starting at offset.
func (d *DataFrame) Slice(offset, length int) (*DataFrame, error) {
	return wrap(d.df.Slice(offset, length))
}

// Head returns the first n rows.
func (d *DataFrame) Head(n int) *DataFrame {
	return &DataFrame{df: d.df.Head(n)}
}

// Tail returns the last n rows.
func (d *DataFrame) Tail(n int) *DataFrame {
	return &DataFrame{df: d.df.Tail(n)}
}

// Join performs a join operation with another DataFrame.
func (d *DataFrame) Join(right *DataFrame, options *JoinOptions) (*DataFrame, error) {
	if options == nil {
		return wrap(d.df.Join(right.df, nil))
	}
	return wrap(d.df.Join(right.df, &dataframe.JoinOptions{
		Type:     dataframe.JoinType(options.Type),
		LeftKey:  options.LeftKey,
		RightKey: options.RightKey,
		Suffix:   options.Suffix,
	}))
}

// String returns a schema summary of the DataFrame.
func (d *DataFrame) String() string {
	return d.df.String()
}

// Release frees the memory used by the DataFrame.
func (d *DataFrame) Release() {
	d.df.Release()
}

// ReadCSV reads a CSV document with a header row, inferring column types.
func ReadCSV(r io.Reader, mem memory.Allocator) (*DataFrame, error) {
	return wrap(cfio.NewCSVReader(r, cfio.DefaultCSVOptions(), mem).Read())
}

// WriteCSV writes df as CSV with a header row; nulls are written as "null".
func WriteCSV(w io.Writer, df *DataFrame) error {
	return cfio.NewCSVWriter(w, cfio.DefaultCSVOptions()).Write(df.df)
}

// WriteJSON writes df as a JSON array of row objects.
func WriteJSON(w io.Writer, df *DataFrame) error {
	return cfio.NewJSONWriter(w, cfio.DefaultJSONOptions()).Write(df.df)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return config.NewConfig()
}

// SetConfig validates cfg and installs it as the global configuration.
func SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// GetConfig returns the global configuration.
func GetConfig() Config {
	return config.GetGlobalConfig()
}

// LoadConfig reads a JSON or YAML configuration file.
func LoadConfig(path string) (Config, error) {
	return config.LoadFromFile(path)
}

// EnableMetrics starts recording join statistics, discarding earlier ones.
func EnableMetrics() {
	monitoring.EnableGlobalMonitoring()
}

// DisableMetrics stops recording. Already recorded metrics stay available.
func DisableMetrics() {
	monitoring.DisableGlobalMonitoring()
}

// Metrics returns the recorded operations in order.
func Metrics() []OperationMetrics {
	return monitoring.GetGlobalMetrics()
}

// Summary aggregates the recorded operations.
func Summary() MetricsSummary {
	return monitoring.GetGlobalSummary()
}
