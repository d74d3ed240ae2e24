// pkg/model/table.go
package model

import (
	"fmt"
)

// Table is an ordered, column-oriented flat table. Values are one of
// string, int64, float64 or nil; rows keep the order they were appended in.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable creates an empty table with the given column set
func NewTable(columns []string) *Table {
	return &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]any, 0),
	}
}

// AppendRow adds a row to the table
// Returns an error if the row width does not match the column count
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// ColumnIndex returns the position of a column, or -1 if absent
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table contains the named column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Value returns the value at the given row for the named column
func (t *Table) Value(rowIdx int, column string) (any, error) {
	colIdx := t.ColumnIndex(column)
	if colIdx < 0 {
		return nil, fmt.Errorf("column %q not found", column)
	}
	if rowIdx < 0 || rowIdx >= len(t.Rows) {
		return nil, fmt.Errorf("row index %d out of range (%d rows)", rowIdx, len(t.Rows))
	}
	return t.Rows[rowIdx][colIdx], nil
}

// Project returns a new table holding only the named columns, in the given
// order, with rows in the original order. Fails if any column is absent.
func (t *Table) Project(columns []string) (*Table, error) {
	indices := make([]int, len(columns))
	for i, col := range columns {
		idx := t.ColumnIndex(col)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", col)
		}
		indices[i] = idx
	}

	out := NewTable(columns)
	for _, row := range t.Rows {
		projected := make([]any, len(indices))
		for i, idx := range indices {
			projected[i] = row[idx]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out, nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns)
	out.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

// Equal reports whether two tables have identical columns, row order and values
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, col := range t.Columns {
		if other.Columns[i] != col {
			return false
		}
	}
	for i, row := range t.Rows {
		for j, val := range row {
			if other.Rows[i][j] != val {
				return false
			}
		}
	}
	return true
}

// ColumnValues returns every value of the named column in row order
func (t *Table) ColumnValues(column string) ([]any, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", column)
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}
