// Package table provides the in-memory tabular dataset representation
// produced by dataset downloads.
package table

import "fmt"

// Type names a scalar column type.
type Type string

const (
	// TypeString stores values as raw text.
	TypeString Type = "string"
	// TypeInt stores values as int64.
	TypeInt Type = "int"
	// TypeFloat stores values as float64.
	TypeFloat Type = "float"
	// TypeBool stores values as bool.
	TypeBool Type = "bool"
	// TypeDecimal stores values as exact decimals. Never inferred; only
	// reachable through a caller override.
	TypeDecimal Type = "decimal"
	// TypeTimestamp stores values as time.Time in UTC.
	TypeTimestamp Type = "timestamp"
)

// Column describes one column of a table.
type Column struct {
	Name string
	Type Type
}

// Table is an immutable column-typed table. Empty cells are nil.
type Table struct {
	cols   []Column
	rows   [][]any
	failed bool
}

var failure = &Table{cols: nil, rows: nil, failed: true}

// Failure returns the sentinel table reported for failed downloads.
func Failure() *Table { return failure }

// Failed reports whether this table is the failure sentinel.
func (t *Table) Failed() bool { return t != nil && t.failed }

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.cols)
}

// Columns returns a copy of the column descriptors.
func (t *Table) Columns() []Column {
	if t == nil {
		return nil
	}
	cols := make([]Column, len(t.cols))
	copy(cols, t.cols)
	return cols
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, col := range t.cols {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at the given row and column.
func (t *Table) Value(row, col int) (any, error) {
	if t == nil || row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.cols) {
		return nil, fmt.Errorf("table: cell (%d,%d) out of range", row, col)
	}
	return t.rows[row][col], nil
}

// Row returns a copy of the cells of one row.
func (t *Table) Row(row int) ([]any, error) {
	if t == nil || row < 0 || row >= len(t.rows) {
		return nil, fmt.Errorf("table: row %d out of range", row)
	}
	cells := make([]any, len(t.rows[row]))
	copy(cells, t.rows[row])
	return cells, nil
}
