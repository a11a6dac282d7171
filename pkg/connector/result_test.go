package connector

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() ([]string, []map[string]any) {
	cols := []string{"id", "name"}
	rows := []map[string]any{
		{"id": int64(1), "name": "Alice"},
		{"id": int64(2), "name": nil},
	}
	return cols, rows
}

func TestEncodeRows_List(t *testing.T) {
	cols, rows := sampleRows()

	res, err := encodeRows(cols, rows, FormatList)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, FormatList, res.Format)
	assert.Equal(t, int64(2), res.RowCount)
	assert.Equal(t, cols, res.Columns)
	assert.Equal(t, rows, res.Rows)
}

func TestEncodeRows_DefaultsToList(t *testing.T) {
	cols, rows := sampleRows()

	res, err := encodeRows(cols, rows, "")
	require.NoError(t, err)
	assert.Equal(t, FormatList, res.Format)
	assert.Equal(t, rows, res.Rows)
}

func TestEncodeRows_CSV(t *testing.T) {
	cols, rows := sampleRows()

	res, err := encodeRows(cols, rows, FormatCSV)
	require.NoError(t, err)

	// Header row plus one line per row; NULL renders as empty.
	assert.Equal(t, "id,name\n1,Alice\n2,\n", res.CSV)
	assert.Nil(t, res.Rows)
}

func TestEncodeRows_DataFrame(t *testing.T) {
	cols, rows := sampleRows()

	res, err := encodeRows(cols, rows, FormatDataFrame)
	require.NoError(t, err)
	require.NotNil(t, res.Frame)

	assert.Equal(t, 2, res.Frame.Nrow())
	assert.ElementsMatch(t, []string{"id", "name"}, res.Frame.Names())
}

func TestEncodeRows_DataFrameEmpty(t *testing.T) {
	res, err := encodeRows([]string{"id"}, nil, FormatDataFrame)
	require.NoError(t, err)
	require.NotNil(t, res.Frame)
	assert.Equal(t, int64(0), res.RowCount)
}

func TestEncodeRows_Arrow(t *testing.T) {
	cols, rows := sampleRows()

	res, err := encodeRows(cols, rows, FormatArrow)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	defer res.Record.Release()

	assert.EqualValues(t, 2, res.Record.NumRows())
	assert.EqualValues(t, 2, res.Record.NumCols())

	ids, ok := res.Record.Column(0).(*array.Int64)
	require.True(t, ok, "id column should infer int64")
	assert.Equal(t, int64(1), ids.Value(0))
	assert.Equal(t, int64(2), ids.Value(1))

	names, ok := res.Record.Column(1).(*array.String)
	require.True(t, ok, "name column should infer string")
	assert.Equal(t, "Alice", names.Value(0))
	assert.True(t, names.IsNull(1), "NULL cell should be an arrow null")
}

func TestEncodeRows_ArrowAllNullColumn(t *testing.T) {
	res, err := encodeRows([]string{"v"}, []map[string]any{{"v": nil}}, FormatArrow)
	require.NoError(t, err)
	defer res.Record.Release()

	// With no values to infer from, the column falls back to string.
	col, ok := res.Record.Column(0).(*array.String)
	require.True(t, ok)
	assert.True(t, col.IsNull(0))
}

func TestEncodeRows_UnknownFormat(t *testing.T) {
	_, err := encodeRows([]string{"id"}, nil, "parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported result format")
}

func TestFailureResult(t *testing.T) {
	res := FailureResult(FormatList, errors.New("relation does not exist"))

	assert.False(t, res.Success)
	assert.Equal(t, "relation does not exist", res.Error)
	assert.Equal(t, RowCountUnknown, res.RowCount)

	// Payload and error are mutually exclusive.
	assert.Nil(t, res.Rows)
	assert.Empty(t, res.CSV)
	assert.Nil(t, res.Frame)
	assert.Nil(t, res.Record)
}

func TestResult_Render(t *testing.T) {
	cols, rows := sampleRows()
	res, err := encodeRows(cols, rows, FormatList)
	require.NoError(t, err)

	out := res.Render()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Alice")

	failed := FailureResult(FormatList, errors.New("boom"))
	assert.Equal(t, "error: boom", failed.Render())
}
