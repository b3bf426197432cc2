// Package table holds the in-memory tabular structure the cleaning pipeline
// mutates stage by stage. Columns are ordered and name lookups resolve to the
// first match, because duplicate names legitimately exist between header
// resolution and timepoint fusion.
package table

import (
	"fmt"
)

// Column is an ordered sequence of cells under one name
type Column struct {
	Name  string
	Cells []Value
}

// Table is an ordered sequence of named columns aligned by row index
type Table struct {
	cols []*Column
}

// New creates an empty table
func New() *Table {
	return &Table{}
}

// FromGrid builds a table from a rectangular grid without promoting headers;
// column names are the 0-based position rendered as a string until the header
// resolver assigns real names
func FromGrid(grid [][]Value) *Table {
	t := &Table{}
	if len(grid) == 0 {
		return t
	}
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	for c := 0; c < width; c++ {
		col := &Column{Name: fmt.Sprintf("%d", c), Cells: make([]Value, len(grid))}
		for r, row := range grid {
			if c < len(row) {
				col.Cells[r] = row[c]
			} else {
				col.Cells[r] = NewMissingValue()
			}
		}
		t.cols = append(t.cols, col)
	}
	return t
}

// NumCols returns the number of columns
func (t *Table) NumCols() int {
	return len(t.cols)
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Cells)
}

// ColumnAt returns the column at position i
func (t *Table) ColumnAt(i int) *Column {
	return t.cols[i]
}

// Column returns the first column with the given name
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Index returns the position of the first column with the given name, or -1
func (t *Table) Index(name string) int {
	for i, c := range t.cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Cell returns the cell at (row, col position)
func (t *Table) Cell(row, col int) Value {
	return t.cols[col].Cells[row]
}

// SetCell replaces the cell at (row, col position)
func (t *Table) SetCell(row, col int, v Value) {
	t.cols[col].Cells[row] = v
}

// AppendColumn adds a column at the end; its cell count must match the table
func (t *Table) AppendColumn(name string, cells []Value) error {
	return t.InsertColumnAt(len(t.cols), name, cells)
}

// InsertColumnAt inserts a column at position pos
func (t *Table) InsertColumnAt(pos int, name string, cells []Value) error {
	if len(t.cols) > 0 && len(cells) != t.NumRows() {
		return fmt.Errorf("column %q has %d cells, table has %d rows", name, len(cells), t.NumRows())
	}
	if pos < 0 || pos > len(t.cols) {
		return fmt.Errorf("insert position %d out of range [0,%d]", pos, len(t.cols))
	}
	col := &Column{Name: name, Cells: cells}
	t.cols = append(t.cols, nil)
	copy(t.cols[pos+1:], t.cols[pos:])
	t.cols[pos] = col
	return nil
}

// MoveColumnAfter repositions the first column named name so it immediately
// follows the first column named after. The table is untouched when either
// column is absent.
func (t *Table) MoveColumnAfter(name, after string) error {
	from := t.Index(name)
	if from < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	if t.Index(after) < 0 {
		return fmt.Errorf("column %q not found", after)
	}
	col := t.cols[from]
	t.cols = append(t.cols[:from], t.cols[from+1:]...)
	pos := t.Index(after) + 1
	t.cols = append(t.cols, nil)
	copy(t.cols[pos+1:], t.cols[pos:])
	t.cols[pos] = col
	return nil
}

// DropRow removes the row at index i from every column; remaining rows keep
// their relative order so indices stay contiguous and zero-based
func (t *Table) DropRow(i int) {
	for _, c := range t.cols {
		c.Cells = append(c.Cells[:i], c.Cells[i+1:]...)
	}
}

// ConstantColumn builds a cell slice of the table's row count holding v
func (t *Table) ConstantColumn(v Value) []Value {
	cells := make([]Value, t.NumRows())
	for i := range cells {
		cells[i] = v
	}
	return cells
}

// EnsureUniqueNames verifies no two columns share a name
func (t *Table) EnsureUniqueNames() error {
	seen := make(map[string]bool, len(t.cols))
	for _, c := range t.cols {
		if seen[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// Row renders row i as output strings, one per column
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.cols))
	for c, col := range t.cols {
		out[c] = col.Cells[i].String()
	}
	return out
}
