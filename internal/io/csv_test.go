package io_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/dtype"
	"github.com/paveg/colframe/internal/io"
	"github.com/paveg/colframe/internal/series"
	"github.com/paveg/colframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, data string, options io.CSVOptions) *dataframe.DataFrame {
	t.Helper()
	df, err := io.NewCSVReader(strings.NewReader(data), options, memory.NewGoAllocator()).Read()
	require.NoError(t, err)
	return df
}

func TestCSVReader(t *testing.T) {
	t.Run("reads simple CSV with headers", func(t *testing.T) {
		df := readCSV(t, "name,age,salary\nAlice,25,50000.5\nBob,30,60000\n", io.DefaultCSVOptions())
		defer df.Release()

		assert.Equal(t, 2, df.Len())
		assert.Equal(t, []dataframe.Field{
			{Name: "name", DataType: dtype.Utf8},
			{Name: "age", DataType: dtype.I64},
			{Name: "salary", DataType: dtype.F64},
		}, df.Schema())
		testutil.AssertColumnValues(t, df, "age", []any{int64(25), int64(30)})
		testutil.AssertColumnValues(t, df, "salary", []any{50000.5, 60000.0})
	})

	t.Run("reads CSV without headers", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Header = false

		df := readCSV(t, "Alice,25\nBob,30\n", options)
		defer df.Release()

		assert.Equal(t, []string{"column_0", "column_1"}, df.Columns())
		assert.Equal(t, 2, df.Len())
	})

	t.Run("reads CSV with custom delimiter", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Delimiter = ';'

		df := readCSV(t, "name;active\nAlice;TRUE\nBob;false\n", options)
		defer df.Release()

		testutil.AssertColumnValues(t, df, "active", []any{true, false})
	})

	t.Run("empty and null cells are null", func(t *testing.T) {
		df := readCSV(t, "id,score,label\n1,,a\n,2.5,null\n3,1,\n", io.DefaultCSVOptions())
		defer df.Release()

		testutil.AssertColumnValues(t, df, "id", []any{int64(1), nil, int64(3)})
		testutil.AssertColumnValues(t, df, "score", []any{nil, 2.5, 1.0})
		testutil.AssertColumnValues(t, df, "label", []any{"a", nil, nil})
	})

	t.Run("short rows are padded with nulls", func(t *testing.T) {
		df := readCSV(t, "a,b\n1,2\n3\n", io.DefaultCSVOptions())
		defer df.Release()

		testutil.AssertColumnValues(t, df, "b", []any{int64(2), nil})
	})

	t.Run("empty input", func(t *testing.T) {
		df := readCSV(t, "", io.DefaultCSVOptions())
		defer df.Release()
		assert.Equal(t, 0, df.Width())
	})

	t.Run("header only", func(t *testing.T) {
		df := readCSV(t, "a,b\n", io.DefaultCSVOptions())
		defer df.Release()
		assert.Equal(t, []string{"a", "b"}, df.Columns())
		assert.Equal(t, 0, df.Len())
	})

	t.Run("duplicate header", func(t *testing.T) {
		_, err := io.NewCSVReader(strings.NewReader("a,a\n1,2\n"), io.DefaultCSVOptions(), memory.NewGoAllocator()).Read()
		require.Error(t, err)
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := io.NewCSVReader(strings.NewReader("a\n\"unterminated\n"), io.DefaultCSVOptions(), memory.NewGoAllocator()).Read()
		require.Error(t, err)
	})
}

func TestCSVTypeInference(t *testing.T) {
	tests := []struct {
		name     string
		cells    string
		expected dtype.DataType
	}{
		{"booleans", "true\nFalse\n", dtype.Boolean},
		{"integers", "1\n-2\n", dtype.I64},
		{"mixed numbers", "1\n2.5\n", dtype.F64},
		{"strings", "1\nx\n", dtype.Utf8},
		{"zero and one are not booleans", "0\n1\n", dtype.I64},
		{"all null", "\nnull\n", dtype.Utf8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df := readCSV(t, "col\n"+tt.cells, io.DefaultCSVOptions())
			defer df.Release()

			col, ok := df.Column("col")
			require.True(t, ok)
			assert.Equal(t, tt.expected, col.DataType())
		})
	}
}

func TestCSVWriter(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	score, err := series.NewWithValidity("score", []float64{1, 2.5, 0}, []bool{true, true, false}, mem.Allocator)
	require.NoError(t, err)
	df := testutil.MustDataFrame(t,
		series.New("id", []int32{1, 2, 3}, mem.Allocator),
		score,
		series.New("day", []arrow.Date32{0, 1, 365}, mem.Allocator),
		series.New("note", []string{"plain", "has,comma", "x"}, mem.Allocator),
	)
	defer df.Release()

	t.Run("default options", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

		expected := "id,score,day,note\n" +
			"1,1.0,1970-01-01,plain\n" +
			"2,2.5,1970-01-02,\"has,comma\"\n" +
			"3,null,1971-01-01,x\n"
		assert.Equal(t, expected, buf.String())
	})

	t.Run("custom null literal without header", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Header = false
		options.NullValue = "NA"

		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, options).Write(df))
		assert.Equal(t, "3,NA,1971-01-01,x\n", strings.SplitAfter(buf.String(), "\n")[2])
	})
}

func TestCSVRoundTripPreservesNulls(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	ids, err := series.NewWithValidity("id", []int64{1, 0, 3}, []bool{true, false, true}, mem.Allocator)
	require.NoError(t, err)
	temps, err := series.NewWithValidity("temp", []float64{20, 21.5, 0}, []bool{true, true, false}, mem.Allocator)
	require.NoError(t, err)
	flags, err := series.NewWithValidity("ok", []bool{true, false, false}, []bool{false, true, true}, mem.Allocator)
	require.NoError(t, err)
	names, err := series.NewWithValidity("name", []string{"a", "", "c"}, []bool{true, false, true}, mem.Allocator)
	require.NoError(t, err)

	original := testutil.MustDataFrame(t, ids, temps, flags, names)
	defer original.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(original))

	restored, err := io.NewCSVReader(&buf, io.DefaultCSVOptions(), mem.Allocator).Read()
	require.NoError(t, err)
	defer restored.Release()

	testutil.AssertDataFrameEqual(t, original, restored)
}

func BenchmarkCSVReader(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("id,name,score,active\n")
	for i := range 1000 {
		sb.WriteString(strings.Join([]string{
			string(rune('0' + i%10)), "name", "1.5", "true",
		}, ","))
		sb.WriteByte('\n')
	}
	data := sb.String()
	mem := memory.NewGoAllocator()

	b.ResetTimer()
	for range b.N {
		df, err := io.NewCSVReader(strings.NewReader(data), io.DefaultCSVOptions(), mem).Read()
		if err != nil {
			b.Fatal(err)
		}
		df.Release()
	}
}
