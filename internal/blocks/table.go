package blocks

import (
	"fmt"

	"github.com/starford/folio/internal/apperr"
)

// NewTable returns a rows × cols table of blank cells.
func NewTable(id string, rows, cols int) *Table {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	data := make([][]string, rows)
	for i := range data {
		data[i] = make([]string, cols)
	}
	return &Table{ID: id, Rows: rows, Cols: cols, Data: data}
}

// AddRow appends a blank row.
func (t *Table) AddRow() {
	t.Data = append(t.Data, make([]string, t.Cols))
	t.Rows++
}

// AddColumn appends a blank cell to every row.
func (t *Table) AddColumn() {
	for i := range t.Data {
		t.Data[i] = append(t.Data[i], "")
	}
	t.Cols++
}

// RemoveRow drops the last row. A table keeps at least one row.
func (t *Table) RemoveRow() bool {
	if t.Rows <= 1 {
		return false
	}
	t.Data[len(t.Data)-1] = nil
	t.Data = t.Data[:len(t.Data)-1]
	t.Rows--
	return true
}

// RemoveColumn drops the last column. A table keeps at least one column.
func (t *Table) RemoveColumn() bool {
	if t.Cols <= 1 {
		return false
	}
	for i, row := range t.Data {
		t.Data[i] = row[:len(row)-1]
	}
	t.Cols--
	return true
}

// SetCell writes v into the cell at (row, col).
func (t *Table) SetCell(row, col int, v string) error {
	if row < 0 || row >= t.Rows || col < 0 || col >= t.Cols {
		return fmt.Errorf("blocks: cell (%d,%d) outside %dx%d table: %w", row, col, t.Rows, t.Cols, apperr.ErrInvalid)
	}
	t.Data[row][col] = v
	return nil
}

// Validate checks the grid matches the declared dimensions.
func (t *Table) Validate() error {
	if t.Rows < 1 || t.Cols < 1 {
		return fmt.Errorf("blocks: table %s has %dx%d dimensions: %w", t.ID, t.Rows, t.Cols, apperr.ErrInvalid)
	}
	if len(t.Data) != t.Rows {
		return fmt.Errorf("blocks: table %s has %d rows, declares %d: %w", t.ID, len(t.Data), t.Rows, apperr.ErrInvalid)
	}
	for i, row := range t.Data {
		if len(row) != t.Cols {
			return fmt.Errorf("blocks: table %s row %d has %d cells, declares %d: %w", t.ID, i, len(row), t.Cols, apperr.ErrInvalid)
		}
	}
	return nil
}

// Normalize rebuilds the grid to the declared dimensions, padding with blanks
// and truncating overflow. Dimensions below 1 are raised to 1.
func (t *Table) Normalize() {
	if t.Rows < 1 {
		t.Rows = 1
	}
	if t.Cols < 1 {
		t.Cols = 1
	}
	data := make([][]string, t.Rows)
	for i := range data {
		row := make([]string, t.Cols)
		if i < len(t.Data) {
			copy(row, t.Data[i])
		}
		data[i] = row
	}
	t.Data = data
}
