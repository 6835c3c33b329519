// Package validation provides input validation utilities for DataFrame operations.
// This package implements reusable validators for column existence, name
// uniqueness, length consistency, data type checks and index bounds. Every
// validator reports failures through the errors package taxonomy.
package validation

import (
	"slices"

	"github.com/paveg/colframe/internal/dtype"
	"github.com/paveg/colframe/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the DataFrame
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// UniqueNamesValidator validates that no name appears twice
type UniqueNamesValidator struct {
	names []string
	op    string
}

// NewUniqueNamesValidator creates a validator for column name uniqueness
func NewUniqueNamesValidator(op string, names ...string) *UniqueNamesValidator {
	return &UniqueNamesValidator{
		names: names,
		op:    op,
	}
}

// Validate reports the first repeated name
func (v *UniqueNamesValidator) Validate() error {
	seen := make(map[string]struct{}, len(v.names))
	for _, name := range v.names {
		if _, dup := seen[name]; dup {
			return errors.NewDuplicateColumnError(v.op, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// LengthValidator validates array length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
	column   string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, column string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		column:   column,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		return errors.NewLengthMismatchError(v.op, v.column, v.expected, v.actual)
	}
	return nil
}

// DataTypeValidator validates that a column has one of the accepted types
type DataTypeValidator struct {
	actual    dtype.DataType
	supported []dtype.DataType
	op        string
	column    string
}

// NewDataTypeValidator creates a validator for data type checking
func NewDataTypeValidator(actual dtype.DataType, op, column string, supported ...dtype.DataType) *DataTypeValidator {
	return &DataTypeValidator{
		actual:    actual,
		supported: supported,
		op:        op,
		column:    column,
	}
}

// Validate checks if the data type is supported
func (v *DataTypeValidator) Validate() error {
	if slices.Contains(v.supported, v.actual) {
		return nil
	}
	err := errors.NewUnsupportedTypeError(v.op, v.actual.String())
	err.Column = v.column
	return err
}

// IndexValidator validates index bounds
type IndexValidator struct {
	index int
	max   int
	op    string
}

// NewIndexValidator creates a validator for index operations
func NewIndexValidator(index, maxIndex int, op string) *IndexValidator {
	return &IndexValidator{
		index: index,
		max:   maxIndex,
		op:    op,
	}
}

// Validate checks if index is within [0, max)
func (v *IndexValidator) Validate() error {
	if v.index < 0 || v.index >= v.max {
		return errors.NewIndexError(v.op, v.index, v.max)
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateUniqueNames is a convenience function for name uniqueness
func ValidateUniqueNames(op string, names ...string) error {
	return NewUniqueNamesValidator(op, names...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, column string) error {
	return NewLengthValidator(expected, actual, op, column).Validate()
}

// ValidateDataType is a convenience function for data type validation
func ValidateDataType(actual dtype.DataType, op, column string, supported ...dtype.DataType) error {
	return NewDataTypeValidator(actual, op, column, supported...).Validate()
}

// ValidateIndex is a convenience function for index validation
func ValidateIndex(index, maxIndex int, op string) error {
	return NewIndexValidator(index, maxIndex, op).Validate()
}
