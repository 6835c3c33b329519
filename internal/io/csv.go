package io

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/dtype"
	"github.com/paveg/colframe/internal/series"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.FieldsPerRecord = -1 // short rows are padded with nulls

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return dataframe.New()
	}

	var headers []string
	dataRows := records
	if r.options.Header {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
	}

	seriesList := make([]*series.Series, 0, len(headers))
	release := func() {
		for _, s := range seriesList {
			s.Release()
		}
	}

	for i, header := range headers {
		cells := make([]string, len(dataRows))
		valid := make([]bool, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) && !r.isNull(row[i]) {
				cells[j] = row[i]
				valid[j] = true
			}
		}

		s, err := r.createSeries(header, cells, valid)
		if err != nil {
			release()
			return nil, fmt.Errorf("creating series for column %s: %w", header, err)
		}
		seriesList = append(seriesList, s)
	}

	df, err := dataframe.New(seriesList...)
	if err != nil {
		release()
		return nil, err
	}
	return df, nil
}

func (r *CSVReader) isNull(cell string) bool {
	return cell == "" || (r.options.NullValue != "" && cell == r.options.NullValue)
}

// createSeries builds a Series of the inferred type from the non-null cells.
func (r *CSVReader) createSeries(name string, cells []string, valid []bool) (*series.Series, error) {
	switch inferDataType(cells, valid) {
	case dtype.Boolean:
		values := make([]bool, len(cells))
		for i, cell := range cells {
			values[i] = valid[i] && strings.EqualFold(cell, trueStr)
		}
		return series.NewWithValidity(name, values, valid, r.mem)
	case dtype.I64:
		values := make([]int64, len(cells))
		for i, cell := range cells {
			if valid[i] {
				values[i], _ = strconv.ParseInt(cell, 10, 64)
			}
		}
		return series.NewWithValidity(name, values, valid, r.mem)
	case dtype.F64:
		values := make([]float64, len(cells))
		for i, cell := range cells {
			if valid[i] {
				values[i], _ = strconv.ParseFloat(cell, 64)
			}
		}
		return series.NewWithValidity(name, values, valid, r.mem)
	default:
		return series.NewWithValidity(name, cells, valid, r.mem)
	}
}

// inferDataType picks the most specific of Boolean, I64, F64 and Utf8 that
// parses every non-null cell. A column without values is Utf8.
func inferDataType(cells []string, valid []bool) dtype.DataType {
	canBeBool, canBeInt, canBeFloat := true, true, true
	hasValue := false

	for i, cell := range cells {
		if !valid[i] {
			continue
		}
		hasValue = true

		if canBeBool && !strings.EqualFold(cell, trueStr) && !strings.EqualFold(cell, falseStr) {
			canBeBool = false
		}
		if canBeInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	switch {
	case !hasValue:
		return dtype.Utf8
	case canBeBool:
		return dtype.Boolean
	case canBeInt:
		return dtype.I64
	case canBeFloat:
		return dtype.F64
	default:
		return dtype.Utf8
	}
}

// Write writes the DataFrame to CSV format
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	if w.options.Header {
		if err := csvWriter.Write(df.Columns()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	cells := make([][]string, df.Width())
	for j, name := range df.Columns() {
		column, _ := df.Column(name)
		cells[j] = make([]string, 0, column.Len())
		for v := range column.Iter() {
			cells[j] = append(cells[j], w.formatCell(v))
		}
	}

	row := make([]string, df.Width())
	for i := range df.Len() {
		for j := range cells {
			row[j] = cells[j][i]
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// formatCell renders v by its DataType. Integral floats keep a decimal point
// so the column reads back as F64.
func (w *CSVWriter) formatCell(v dtype.Value) string {
	if v.IsNull() {
		return w.options.NullValue
	}
	if v.DataType().IsFloat() {
		f, _ := v.Float64()
		s := v.String()
		if !math.IsInf(f, 0) && !math.IsNaN(f) && !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	}
	return v.String()
}
