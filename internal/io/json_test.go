package io_test

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/goccy/go-json"
	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/dtype"
	"github.com/paveg/colframe/internal/io"
	"github.com/paveg/colframe/internal/series"
	"github.com/paveg/colframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONWriter_WriteArray(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	scores, err := series.NewWithValidity("score", []float64{1.5, 0}, []bool{true, false}, mem.Allocator)
	require.NoError(t, err)
	df := testutil.MustDataFrame(t,
		series.New("name", []string{"Alice", "Bob"}, mem.Allocator),
		series.New("id", []int64{1, 2}, mem.Allocator),
		scores,
		series.New("active", []bool{true, false}, mem.Allocator),
	)
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewJSONWriter(&buf, io.DefaultJSONOptions()).Write(df))

	// Keys follow column order.
	assert.Equal(t,
		`[{"name":"Alice","id":1,"score":1.5,"active":true},{"name":"Bob","id":2,"score":null,"active":false}]`,
		buf.String())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
	assert.Nil(t, decoded[1]["score"])
}

func TestJSONWriter_WriteLines(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.MustDataFrame(t,
		series.New("day", []arrow.Date32{dtype.DateOf(mustDate(t, "2024-03-01"))}, mem.Allocator),
		series.New("at", []arrow.Time64{dtype.TimeOf(12, 30, 0, 0)}, mem.Allocator),
		series.New("ratio", []float32{float32(math.Inf(1))}, mem.Allocator),
	)
	defer df.Release()

	options := io.DefaultJSONOptions()
	options.Format = io.JSONLines

	var buf bytes.Buffer
	require.NoError(t, io.NewJSONWriter(&buf, options).Write(df))
	assert.Equal(t, `{"day":"2024-03-01","at":"12:30:00","ratio":"+Inf"}`+"\n", buf.String())
}

func TestJSONWriter_Empty(t *testing.T) {
	df, err := dataframe.New()
	require.NoError(t, err)
	defer df.Release()

	var buf bytes.Buffer
	require.NoError(t, io.NewJSONWriter(&buf, io.DefaultJSONOptions()).Write(df))
	assert.Equal(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, io.NewJSONWriter(&buf, io.JSONOptions{Format: io.JSONLines}).Write(df))
	assert.Empty(t, buf.String())
}

func TestJSONWriter_UnsupportedFormat(t *testing.T) {
	df, err := dataframe.New()
	require.NoError(t, err)
	defer df.Release()

	var buf bytes.Buffer
	err = io.NewJSONWriter(&buf, io.JSONOptions{Format: io.JSONFormat(9)}).Write(df)
	require.EqualError(t, err, "unsupported JSON format: 9")
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dtype.DateLayout, s)
	require.NoError(t, err)
	return d
}
