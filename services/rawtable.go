package services

import "github.com/cosalpha/ipo-tracker/shared"

// RawTable is the column/row form every source scraper produces before
// normalization. Columns are already flattened header strings.
type RawTable struct {
	Columns []string
	Rows    [][]string
	Status  shared.FetchStatus
}

// EmptyTable returns a table carrying a degraded status and no rows
func EmptyTable(status shared.FetchStatus) RawTable {
	return RawTable{Columns: []string{}, Rows: [][]string{}, Status: status}
}

// ColumnIndex returns the index of the first column whose normalized name
// matches the given matcher, or -1 when none does
func (t RawTable) ColumnIndex(match func(string) bool) int {
	for i, col := range t.Columns {
		if match(col) {
			return i
		}
	}
	return -1
}

// Cell returns the value at the given row and column, or empty string
// when the row is ragged
func (t RawTable) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
