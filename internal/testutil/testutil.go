// Package testutil provides common testing utilities shared by the colframe
// test suites.
//
// It covers:
// - Memory allocator setup and cleanup
// - Temporary global configuration
// - Standard test DataFrame creation
// - Common test assertions on column contents
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 4
)

// TestMemoryContext provides memory allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a memory allocator with automatic cleanup for tests.
// Returns a TestMemoryContext that should be released with defer.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	allocator := memory.NewGoAllocator()

	return &TestMemoryContext{
		Allocator: allocator,
		cleanup: func() {
			// Memory allocator cleanup is handled by Go GC
		},
	}
}

// WithConfig installs a modified copy of the global configuration until the
// test finishes.
func WithConfig(tb testing.TB, mutate func(*config.Config)) {
	tb.Helper()
	prev := config.GetGlobalConfig()
	cfg := prev
	mutate(&cfg)
	require.NoError(tb, cfg.Validate())
	config.SetGlobalConfig(cfg)
	tb.Cleanup(func() { config.SetGlobalConfig(prev) })
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	includeNulls bool
	rowCount     int
	withActive   bool
}

// WithNulls makes every third age null.
func WithNulls() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// WithActiveColumn includes an 'active' boolean column.
func WithActiveColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withActive = true
	}
}

// CreateTestDataFrame creates a standard test DataFrame with employee data.
//
// Default DataFrame includes:
// - name (Utf8): ["Alice", "Bob", "Charlie", "David"]
// - age (I64): [25, 30, 35, 28]
// - department (Utf8): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (I64): [100000, 80000, 120000, 75000]
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
//	df := testutil.CreateTestDataFrame(t, mem.Allocator)
//	defer df.Release()
func CreateTestDataFrame(tb testing.TB, allocator memory.Allocator, opts ...TestDataFrameOption) *dataframe.DataFrame {
	tb.Helper()
	cfg := &testDataFrameConfig{
		includeNulls: false,
		rowCount:     defaultRowCount,
		withActive:   false,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	ageValid := make([]bool, cfg.rowCount)
	for i := range ageValid {
		ageValid[i] = !cfg.includeNulls || i%3 != 2
	}
	ages, err := series.NewWithValidity("age", generateAges(cfg.rowCount), ageValid, allocator)
	require.NoError(tb, err)

	seriesList := []*series.Series{
		series.New("name", generateNames(cfg.rowCount), allocator),
		ages,
		series.New("department", generateDepartments(cfg.rowCount), allocator),
		series.New("salary", generateSalaries(cfg.rowCount), allocator),
	}

	if cfg.withActive {
		seriesList = append(seriesList, series.New("active", generateActiveFlags(cfg.rowCount), allocator))
	}

	return MustDataFrame(tb, seriesList...)
}

// CreateSimpleTestDataFrame creates a simple 2-column DataFrame for basic testing.
func CreateSimpleTestDataFrame(tb testing.TB, allocator memory.Allocator) *dataframe.DataFrame {
	tb.Helper()
	return MustDataFrame(tb,
		series.New("name", []string{"Alice", "Bob"}, allocator),
		series.New("age", []int64{25, 30}, allocator),
	)
}

// CreateWeatherFrames returns a left frame of daily temperatures and a right
// frame of rainfall covering only some of the days:
//
//	left:  days [0 1 2 3 4], temp [22.1 19.9 7 2 3]
//	right: days [1 2],       rain [0.1 0.2]
func CreateWeatherFrames(tb testing.TB, allocator memory.Allocator) (*dataframe.DataFrame, *dataframe.DataFrame) {
	tb.Helper()
	left := MustDataFrame(tb,
		series.New("days", []int64{0, 1, 2, 3, 4}, allocator),
		series.New("temp", []float64{22.1, 19.9, 7, 2, 3}, allocator),
	)
	right := MustDataFrame(tb,
		series.New("days", []int64{1, 2}, allocator),
		series.New("rain", []float64{0.1, 0.2}, allocator),
	)
	return left, right
}

// MustDataFrame builds a DataFrame and fails the test on a schema error.
func MustDataFrame(tb testing.TB, columns ...*series.Series) *dataframe.DataFrame {
	tb.Helper()
	df, err := dataframe.New(columns...)
	require.NoError(tb, err)
	return df
}

// ColumnValues returns the payload of every element of the named column, nil
// for null.
func ColumnValues(tb testing.TB, df *dataframe.DataFrame, name string) []any {
	tb.Helper()
	col, ok := df.Column(name)
	require.True(tb, ok, "column %s should exist", name)
	return SeriesValues(col)
}

// SeriesValues returns the payload of every element, nil for null.
func SeriesValues(s *series.Series) []any {
	out := make([]any, 0, s.Len())
	for v := range s.Iter() {
		out = append(out, v.Any())
	}
	return out
}

// AssertColumnValues checks the contents of one column.
func AssertColumnValues(tb testing.TB, df *dataframe.DataFrame, name string, expected []any) {
	tb.Helper()
	assert.Equal(tb, expected, ColumnValues(tb, df, name), "column %s", name)
}

// AssertDataFrameEqual compares schema and contents of two DataFrames.
func AssertDataFrameEqual(tb testing.TB, expected, actual *dataframe.DataFrame) {
	tb.Helper()

	require.NotNil(tb, expected, "expected DataFrame should not be nil")
	require.NotNil(tb, actual, "actual DataFrame should not be nil")

	assert.Equal(tb, expected.Len(), actual.Len(), "DataFrame lengths should match")
	require.Equal(tb, expected.Schema(), actual.Schema(), "DataFrame schemas should match")

	for _, colName := range expected.Columns() {
		assert.Equal(tb, ColumnValues(tb, expected, colName), ColumnValues(tb, actual, colName),
			"column %s data should match", colName)
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(tb testing.TB, df *dataframe.DataFrame, expectedColumns []string) {
	tb.Helper()

	require.NotNil(tb, df, "DataFrame should not be nil")

	actualColumns := df.Columns()
	assert.Len(tb, actualColumns, len(expectedColumns), "column count should match")

	for _, col := range expectedColumns {
		assert.True(tb, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

// AssertDataFrameNotEmpty verifies that a DataFrame is not empty.
func AssertDataFrameNotEmpty(tb testing.TB, df *dataframe.DataFrame) {
	tb.Helper()

	require.NotNil(tb, df, "DataFrame should not be nil")
	assert.Positive(tb, df.Len(), "DataFrame should not be empty")
	assert.Positive(tb, df.Width(), "DataFrame should have columns")
}

// Helper functions for generating test data

func generateNames(count int) []string {
	baseNames := []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry"}
	names := make([]string, count)
	for i := range count {
		names[i] = baseNames[i%len(baseNames)]
	}
	return names
}

func generateAges(count int) []int64 {
	baseAges := []int64{25, 30, 35, 28, 32, 45, 29, 38}
	ages := make([]int64, count)
	for i := range count {
		ages[i] = baseAges[i%len(baseAges)]
	}
	return ages
}

func generateDepartments(count int) []string {
	baseDepts := []string{"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales"}
	departments := make([]string, count)
	for i := range count {
		departments[i] = baseDepts[i%len(baseDepts)]
	}
	return departments
}

func generateSalaries(count int) []int64 {
	baseSalaries := []int64{100000, 80000, 120000, 75000, 90000, 110000, 95000, 85000}
	salaries := make([]int64, count)
	for i := range count {
		salaries[i] = baseSalaries[i%len(baseSalaries)]
	}
	return salaries
}

func generateActiveFlags(count int) []bool {
	baseFlags := []bool{true, true, false, true, true, false, true, false}
	flags := make([]bool, count)
	for i := range count {
		flags[i] = baseFlags[i%len(baseFlags)]
	}
	return flags
}
