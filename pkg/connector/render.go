package connector

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Render pretty-prints a list-format result as an aligned text table, for
// REPL and debug output. Failed results render their error detail; non-list
// payloads render whatever textual form they carry.
func (r *Result) Render() string {
	if !r.Success {
		return "error: " + r.Error
	}
	if r.Format == FormatCSV {
		return r.CSV
	}
	if r.Format != FormatList {
		return ""
	}

	t := table.NewWriter()
	header := make(table.Row, len(r.Columns))
	for i, col := range r.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range r.Rows {
		cells := make(table.Row, len(r.Columns))
		for i, col := range r.Columns {
			cells[i] = formatValue(row[col])
		}
		t.AppendRow(cells)
	}
	return t.Render()
}
