package io

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/dtype"
)

// Write writes the DataFrame to JSON format. Objects list the columns in
// DataFrame order. Dates and times are written as strings, as are NaN and
// infinite floats; nulls are JSON null.
func (w *JSONWriter) Write(df *dataframe.DataFrame) error {
	if w.options.Format != JSONArray && w.options.Format != JSONLines {
		return fmt.Errorf("unsupported JSON format: %d", w.options.Format)
	}

	rows, err := w.encodeRows(df)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch w.options.Format {
	case JSONArray:
		buf.WriteByte('[')
		for i, row := range rows {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(row)
		}
		buf.WriteByte(']')
	case JSONLines:
		for _, row := range rows {
			buf.Write(row)
			buf.WriteByte('\n')
		}
	}

	_, err = w.writer.Write(buf.Bytes())
	return err
}

// encodeRows renders one JSON object per row.
func (w *JSONWriter) encodeRows(df *dataframe.DataFrame) ([][]byte, error) {
	rows := make([]bytes.Buffer, df.Len())
	for i := range rows {
		rows[i].WriteByte('{')
	}

	for j, name := range df.Columns() {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("marshaling column name %s: %w", name, err)
		}
		column, _ := df.Column(name)
		for i, v := range column.All() {
			value, err := json.Marshal(jsonValue(v))
			if err != nil {
				return nil, fmt.Errorf("marshaling %s row %d: %w", name, i, err)
			}
			if j > 0 {
				rows[i].WriteByte(',')
			}
			rows[i].Write(key)
			rows[i].WriteByte(':')
			rows[i].Write(value)
		}
	}

	out := make([][]byte, len(rows))
	for i := range rows {
		rows[i].WriteByte('}')
		out[i] = rows[i].Bytes()
	}
	return out, nil
}

// jsonValue maps a Value onto what encodes naturally as JSON.
func jsonValue(v dtype.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.DataType() {
	case dtype.Date, dtype.Time:
		return v.String()
	case dtype.F32, dtype.F64:
		f, _ := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v.String()
		}
	}
	return v.Any()
}
