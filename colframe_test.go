package colframe_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(s *colframe.Series) []any {
	out := make([]any, 0, s.Len())
	for v := range s.Iter() {
		out = append(out, v.Any())
	}
	return out
}

func weather(t *testing.T, mem memory.Allocator) (*colframe.DataFrame, *colframe.DataFrame) {
	t.Helper()
	left, err := colframe.NewDataFrame(
		colframe.NewSeries("days", []int64{0, 1, 2, 3, 4}, mem),
		colframe.NewSeries("temp", []float64{22.1, 19.9, 7, 2, 3}, mem),
	)
	require.NoError(t, err)
	right, err := colframe.NewDataFrame(
		colframe.NewSeries("days", []int64{1, 2}, mem),
		colframe.NewSeries("rain", []float64{0.1, 0.2}, mem),
	)
	require.NoError(t, err)
	return left, right
}

func TestDataFrameWorkflow(t *testing.T) {
	mem := memory.NewGoAllocator()
	left, right := weather(t, mem)
	defer left.Release()
	defer right.Release()

	joined, err := left.Join(right, &colframe.JoinOptions{Type: colframe.LeftJoin, LeftKey: "days"})
	require.NoError(t, err)
	defer joined.Release()

	rain, ok := joined.Column("rain")
	require.True(t, ok)
	assert.Equal(t, []any{nil, 0.1, 0.2, nil, nil}, values(rain))

	temp, _ := joined.Column("temp")
	mask, err := temp.CompareScalar(colframe.Gt, colframe.Value{})
	require.NoError(t, err)
	defer mask.Release()
	assert.Equal(t, []any{nil, nil, nil, nil, nil}, values(mask), "comparison with null is null")

	threshold, err := colframe.NewValue(colframe.F64, 5)
	require.NoError(t, err)
	warm, err := temp.CompareScalar(colframe.Gt, threshold)
	require.NoError(t, err)
	defer warm.Release()

	filtered, err := joined.Filter(warm)
	require.NoError(t, err)
	defer filtered.Release()
	assert.Equal(t, 3, filtered.Len())

	total, err := rain.Aggregate(colframe.Sum)
	require.NoError(t, err)
	sum, _ := total.Float64()
	assert.InDelta(t, 0.3, sum, 1e-9)

	assert.Equal(t, "DataFrame[5x3]\n  days: I64\n  temp: F64\n  rain: F64", joined.String())
}

func TestNewDataFrameErrors(t *testing.T) {
	mem := memory.NewGoAllocator()

	a := colframe.NewSeries("a", []int64{1}, mem)
	b := colframe.NewSeries("a", []int64{2}, mem)
	defer a.Release()
	defer b.Release()

	_, err := colframe.NewDataFrame(a, b)
	require.ErrorIs(t, err, colframe.ErrSchema)
}

func TestJoinErrors(t *testing.T) {
	mem := memory.NewGoAllocator()
	left, right := weather(t, mem)
	defer left.Release()
	defer right.Release()

	_, err := left.Join(right, &colframe.JoinOptions{LeftKey: "missing"})
	require.ErrorIs(t, err, colframe.ErrJoin)
	require.ErrorIs(t, err, colframe.ErrMissingKeyColumn)

	_, err = left.Join(right, nil)
	require.Error(t, err)
}

func TestCSVAndJSON(t *testing.T) {
	mem := memory.NewGoAllocator()

	df, err := colframe.ReadCSV(strings.NewReader("id,name\n1,a\n,b\n"), mem)
	require.NoError(t, err)
	defer df.Release()

	assert.Equal(t, []colframe.Field{
		{Name: "id", DataType: colframe.I64},
		{Name: "name", DataType: colframe.Utf8},
	}, df.Schema())

	var csvBuf bytes.Buffer
	require.NoError(t, colframe.WriteCSV(&csvBuf, df))
	assert.Equal(t, "id,name\n1,a\nnull,b\n", csvBuf.String())

	var jsonBuf bytes.Buffer
	require.NoError(t, colframe.WriteJSON(&jsonBuf, df))
	assert.Equal(t, `[{"id":1,"name":"a"},{"id":null,"name":"b"}]`, jsonBuf.String())
}

func TestConfig(t *testing.T) {
	original := colframe.GetConfig()
	defer func() { require.NoError(t, colframe.SetConfig(original)) }()

	cfg := colframe.DefaultConfig()
	cfg.JoinSuffix = "_right"
	require.NoError(t, colframe.SetConfig(cfg))
	assert.Equal(t, "_right", colframe.GetConfig().JoinSuffix)

	cfg.CastOverflow = "clamp"
	require.Error(t, colframe.SetConfig(cfg))
	assert.Equal(t, "_right", colframe.GetConfig().JoinSuffix, "invalid config is not installed")

	path := filepath.Join(t.TempDir(), "colframe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("join_suffix: _y\n"), 0o600))
	loaded, err := colframe.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "_y", loaded.JoinSuffix)
}

func TestMemoryManager(t *testing.T) {
	mem := memory.NewGoAllocator()

	err := colframe.WithMemoryManager(func(m *colframe.MemoryManager) error {
		left, right := weather(t, mem)
		m.Track(left)
		m.Track(right)
		m.Track(nil)

		joined, err := left.Join(right, &colframe.JoinOptions{LeftKey: "days"})
		if err != nil {
			return err
		}
		m.Track(joined)

		assert.Equal(t, 3, m.Count())
		assert.Equal(t, 2, joined.Len())
		return nil
	})
	require.NoError(t, err)

	manager := colframe.NewMemoryManager()
	manager.Track(colframe.NewSeries("x", []int64{1}, mem))
	manager.ReleaseAll()
	manager.ReleaseAll()
	assert.Equal(t, 0, manager.Count())
}

func TestWithDataFrame(t *testing.T) {
	mem := memory.NewGoAllocator()
	sentinel := errors.New("stop")

	err := colframe.WithDataFrame(func() (*colframe.DataFrame, error) {
		return colframe.ReadCSV(strings.NewReader("a\n1\n"), mem)
	}, func(df *colframe.DataFrame) error {
		assert.Equal(t, 1, df.Len())
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	err = colframe.WithDataFrame(func() (*colframe.DataFrame, error) {
		return colframe.ReadCSV(strings.NewReader("a,a\n1,2\n"), mem)
	}, func(*colframe.DataFrame) error {
		t.Fatal("fn must not run when the factory fails")
		return nil
	})
	require.Error(t, err)
}

func TestMetrics(t *testing.T) {
	mem := memory.NewGoAllocator()
	left, right := weather(t, mem)
	defer left.Release()
	defer right.Release()

	colframe.EnableMetrics()
	defer colframe.DisableMetrics()

	joined, err := left.Join(right, &colframe.JoinOptions{Type: colframe.LeftJoin, LeftKey: "days"})
	require.NoError(t, err)
	joined.Release()

	metrics := colframe.Metrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, "join.left", metrics[0].Operation)
	assert.Equal(t, int64(7), metrics[0].RowsIn)
	assert.Equal(t, int64(5), metrics[0].RowsOut)
	assert.Equal(t, int64(2), metrics[0].DistinctKeys)
	assert.False(t, metrics[0].Parallel)
	assert.Equal(t, 1, colframe.Summary().OperationCounts["join.left"])

	colframe.DisableMetrics()
	joined, err = left.Join(right, &colframe.JoinOptions{LeftKey: "days"})
	require.NoError(t, err)
	joined.Release()
	assert.Len(t, colframe.Metrics(), 1)
}

func TestSeriesFillAndMedian(t *testing.T) {
	mem := memory.NewGoAllocator()
	rain, err := colframe.NewSeriesWithValidity("rain", []float64{0.4, 0, 0.1, 0}, []bool{true, false, true, false}, mem)
	require.NoError(t, err)
	defer rain.Release()

	filled, err := rain.FillNullWithStrategy(colframe.FillForward)
	require.NoError(t, err)
	defer filled.Release()
	assert.Equal(t, 0, filled.NullCount())

	median, err := filled.Median()
	require.NoError(t, err)
	m, _ := median.Float64()
	assert.InDelta(t, 0.25, m, 1e-9)
}
