package validation_test

import (
	"slices"
	"testing"

	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockColumnProvider implements ColumnProvider for testing.
type MockColumnProvider struct {
	columns []string
}

func (m *MockColumnProvider) HasColumn(name string) bool {
	return slices.Contains(m.columns, name)
}

func TestColumnValidator(t *testing.T) {
	mockDF := &MockColumnProvider{columns: []string{"id", "name"}}

	t.Run("Valid columns", func(t *testing.T) {
		require.NoError(t, validation.NewColumnValidator(mockDF, "Select", "id", "name").Validate())
	})

	t.Run("Missing column", func(t *testing.T) {
		err := validation.ValidateColumns(mockDF, "Select", "id", "age")
		require.ErrorIs(t, err, dferrors.ErrSchema)
		require.ErrorIs(t, err, dferrors.ErrColumnNotFound)

		var dfErr *dferrors.DataFrameError
		require.ErrorAs(t, err, &dfErr)
		assert.Equal(t, "Select", dfErr.Op)
		assert.Equal(t, "age", dfErr.Column)
	})
}

func TestUniqueNamesValidator(t *testing.T) {
	require.NoError(t, validation.ValidateUniqueNames("New", "a", "b", "c"))
	require.NoError(t, validation.ValidateUniqueNames("New"))

	err := validation.ValidateUniqueNames("New", "a", "b", "a")
	require.ErrorIs(t, err, dferrors.ErrDuplicateColumn)

	var dfErr *dferrors.DataFrameError
	require.ErrorAs(t, err, &dfErr)
	assert.Equal(t, "a", dfErr.Column)
}

func TestLengthValidator(t *testing.T) {
	require.NoError(t, validation.ValidateLength(3, 3, "New", "x"))

	err := validation.ValidateLength(3, 2, "New", "x")
	require.ErrorIs(t, err, dferrors.ErrLengthMismatch)
	assert.Contains(t, err.Error(), "expected length 3, got 2")
}

func TestDataTypeValidator(t *testing.T) {
	require.NoError(t, validation.ValidateDataType(dtype.I64, "Sum", "x", dtype.I32, dtype.I64))

	err := validation.ValidateDataType(dtype.Utf8, "Sum", "x", dtype.I32, dtype.I64)
	require.ErrorIs(t, err, dferrors.ErrUnsupported)

	var dfErr *dferrors.DataFrameError
	require.ErrorAs(t, err, &dfErr)
	assert.Equal(t, "x", dfErr.Column)
}

func TestIndexValidator(t *testing.T) {
	tests := []struct {
		index   int
		max     int
		wantErr bool
	}{
		{0, 3, false},
		{2, 3, false},
		{3, 3, true},
		{-1, 3, true},
		{0, 0, true},
	}

	for _, tt := range tests {
		err := validation.ValidateIndex(tt.index, tt.max, "Get")
		if tt.wantErr {
			require.ErrorIs(t, err, dferrors.ErrIndex, "index %d max %d", tt.index, tt.max)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestCompoundValidator(t *testing.T) {
	mockDF := &MockColumnProvider{columns: []string{"id"}}

	ok := validation.NewCompoundValidator(
		validation.NewColumnValidator(mockDF, "Join", "id"),
		validation.NewLengthValidator(2, 2, "Join", "id"),
	)
	require.NoError(t, ok.Validate())

	// The first failing validator wins.
	failing := validation.NewCompoundValidator(
		validation.NewLengthValidator(2, 2, "Join", "id"),
		validation.NewColumnValidator(mockDF, "Join", "missing"),
		validation.NewIndexValidator(5, 1, "Join"),
	)
	err := failing.Validate()
	require.ErrorIs(t, err, dferrors.ErrColumnNotFound)
	assert.NotErrorIs(t, err, dferrors.ErrIndex)
}
