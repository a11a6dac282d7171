package connector

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/go-gota/gota/dataframe"
)

// Format selects the payload encoding of an execution result.
type Format string

const (
	// FormatList returns rows as an ordered slice of field-name-to-value maps.
	FormatList Format = "list"
	// FormatCSV returns a single comma-separated string with a header row.
	FormatCSV Format = "csv"
	// FormatDataFrame returns a gota dataframe.
	FormatDataFrame Format = "pandas"
	// FormatArrow returns an Arrow record batch.
	FormatArrow Format = "arrow"
)

// RowCountUnknown marks a result whose row count the engine did not report.
// It is never fabricated to zero.
const RowCountUnknown int64 = -1

// Query is the payload accepted by Execute.
type Query struct {
	SQL string `mapstructure:"sql_query"`
}

// Result is the normalized outcome of one execute call. A failed result
// carries Error and no payload; a successful one carries exactly the payload
// field matching Format and no error detail. Results are created fresh per
// call and immutable once returned.
type Result struct {
	// Success reports whether the statement executed without error.
	Success bool

	// Error holds the failure detail. Present iff Success is false.
	Error string

	// Format is the encoding of the payload.
	Format Format

	// RowCount is the number of returned rows for queries and the number of
	// affected rows for DML, or RowCountUnknown when the engine did not
	// report a count (typical for DDL).
	RowCount int64

	// Columns preserves the engine-reported column order for tabular payloads.
	Columns []string

	// Rows is the FormatList payload.
	Rows []map[string]any

	// CSV is the FormatCSV payload.
	CSV string

	// Frame is the FormatDataFrame payload.
	Frame *dataframe.DataFrame

	// Record is the FormatArrow payload. The caller takes ownership and must
	// Release it when done.
	Record arrow.Record
}

// FailureResult builds a failed result carrying the error detail and no
// payload. Used by connectors whose documented error mode is
// return-with-flag rather than typed errors.
func FailureResult(format Format, err error) *Result {
	return &Result{
		Success:  false,
		Error:    err.Error(),
		Format:   format,
		RowCount: RowCountUnknown,
	}
}

// encodeRows builds a successful result from scanned rows in the requested
// encoding. Column order follows cols, the engine-reported order.
func encodeRows(cols []string, rows []map[string]any, format Format) (*Result, error) {
	res := &Result{
		Success:  true,
		Format:   format,
		RowCount: int64(len(rows)),
		Columns:  cols,
	}

	switch format {
	case FormatList, "":
		res.Format = FormatList
		res.Rows = rows
	case FormatCSV:
		text, err := encodeCSV(cols, rows)
		if err != nil {
			return nil, err
		}
		res.CSV = text
	case FormatDataFrame:
		// gota rejects a zero-row load; an empty frame stands in for it.
		if len(rows) == 0 {
			res.Frame = &dataframe.DataFrame{}
			break
		}
		frame := dataframe.LoadMaps(rows)
		if frame.Err != nil {
			return nil, fmt.Errorf("failed to build dataframe: %w", frame.Err)
		}
		res.Frame = &frame
	case FormatArrow:
		rec, err := encodeArrow(cols, rows)
		if err != nil {
			return nil, err
		}
		res.Record = rec
	default:
		return nil, fmt.Errorf("unsupported result format %q", format)
	}
	return res, nil
}

// encodeCSV renders rows as comma-separated text with a header row.
func encodeCSV(cols []string, rows []map[string]any) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(cols); err != nil {
		return "", fmt.Errorf("failed to encode csv header: %w", err)
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			record[i] = formatValue(row[col])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to encode csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to encode csv: %w", err)
	}
	return sb.String(), nil
}

// formatValue renders one cell for textual encodings. NULL becomes the
// empty string.
func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
