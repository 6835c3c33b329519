// Package errors provides standardized error types for Series and DataFrame operations.
// This package defines DataFrameError for consistent error handling across
// all public APIs, with an error kind, operation context and error wrapping support.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a DataFrameError.
type Kind int

const (
	KindUnknown Kind = iota
	KindSchema
	KindTypeMismatch
	KindCast
	KindUnsupported
	KindIndex
	KindDivisionByZero
	KindJoin
)

// String returns the name of the error kind
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "SchemaError"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindCast:
		return "CastError"
	case KindUnsupported:
		return "UnsupportedOperation"
	case KindIndex:
		return "IndexError"
	case KindDivisionByZero:
		return "DivisionByZero"
	case KindJoin:
		return "JoinError"
	default:
		return "Error"
	}
}

// DataFrameError represents standardized errors across all Series and DataFrame operations
type DataFrameError struct {
	Kind    Kind   // Error classification
	Op      string // Operation name (e.g., "Cast", "Filter", "Join")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: %s operation failed on column '%s': %s", e.Kind, e.Op, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s operation failed: %s", e.Kind, e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// A target carrying only a Kind matches every error of that kind.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.Op == "" && df.Column == "" && df.Message == "" {
		return df.Kind == KindUnknown || e.Kind == df.Kind
	}
	return e.Kind == df.Kind && e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
}

// Kind-level sentinels; use with errors.Is.
var (
	ErrSchema         = &DataFrameError{Kind: KindSchema}
	ErrTypeMismatch   = &DataFrameError{Kind: KindTypeMismatch}
	ErrCast           = &DataFrameError{Kind: KindCast}
	ErrUnsupported    = &DataFrameError{Kind: KindUnsupported}
	ErrIndex          = &DataFrameError{Kind: KindIndex}
	ErrDivisionByZero = &DataFrameError{Kind: KindDivisionByZero}
	ErrJoin           = &DataFrameError{Kind: KindJoin}
)

// Detail sentinels carried as the Cause of a DataFrameError.
var (
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrDuplicateColumn  = errors.New("duplicate column name")
	ErrColumnNotFound   = errors.New("column not found")
	ErrParseFailure     = errors.New("parse failure")
	ErrMissingKeyColumn = errors.New("missing key column")
	ErrKeyTypeMismatch  = errors.New("incompatible key types")
	ErrSchemaCollision  = errors.New("output column name collision")
)

// Common error constructors for consistent error creation

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindSchema,
		Op:      op,
		Column:  column,
		Message: "column does not exist",
		Cause:   ErrColumnNotFound,
	}
}

// NewDuplicateColumnError creates an error for a repeated column name
func NewDuplicateColumnError(op, column string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindSchema,
		Op:      op,
		Column:  column,
		Message: "column name already present",
		Cause:   ErrDuplicateColumn,
	}
}

// NewLengthMismatchError creates an error for operands of unequal length
func NewLengthMismatchError(op, column string, expected, actual int) *DataFrameError {
	return &DataFrameError{
		Kind:    KindSchema,
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("expected length %d, got %d", expected, actual),
		Cause:   ErrLengthMismatch,
	}
}

// NewTypeMismatchError creates an error for operands whose dtypes must agree
func NewTypeMismatchError(op, column, left, right string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindTypeMismatch,
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("incompatible data types %s and %s", left, right),
	}
}

// NewUnsupportedTypeError creates an error for an operation not defined for a dtype
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindUnsupported,
		Op:      op,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewParseError creates a per-value cast error
func NewParseError(input, target string, cause error) *DataFrameError {
	return &DataFrameError{
		Kind:    KindCast,
		Op:      "Cast",
		Message: fmt.Sprintf("cannot parse %q as %s", input, target),
		Cause:   fmt.Errorf("%w: %w", ErrParseFailure, cause),
	}
}

// NewIndexError creates an error for an out-of-range index
func NewIndexError(op string, index, length int) *DataFrameError {
	return &DataFrameError{
		Kind:    KindIndex,
		Op:      op,
		Message: fmt.Sprintf("index %d out of bounds for length %d", index, length),
	}
}

// NewDivisionByZeroError creates an error for integer division by zero
func NewDivisionByZeroError(op, column string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindDivisionByZero,
		Op:      op,
		Column:  column,
		Message: "integer division by zero",
	}
}

// NewJoinError creates a join failure with the given detail sentinel
func NewJoinError(column string, cause error, message string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindJoin,
		Op:      "Join",
		Column:  column,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindSchema,
		Op:      op,
		Message: message,
	}
}
