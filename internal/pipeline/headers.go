package pipeline

import (
	"cartool/domain/perfusion"
	"cartool/domain/table"
)

// ResolveHeaders promotes row 0 of the sanitized grid to column headers and
// renames recognized raw labels to canonical identifiers. Renames are exact
// map lookups, not substring matches, so label texts cannot partially collide;
// unmatched names pass through unchanged. The returned table has one fewer row
// than the grid. Duplicate names are expected here: a metric repeated per
// timepoint keeps its canonical name at every position until the timepoint
// merger makes the names unique.
func ResolveHeaders(grid [][]table.Value, labels perfusion.Labels) *table.Table {
	t := table.FromGrid(grid)
	if t.NumRows() == 0 {
		return t
	}

	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		raw := col.Cells[0].AsString()
		canon := labels.TimeIndependent.Canonical(raw)
		canon = labels.TimeDependent.Canonical(canon)
		col.Name = canon
	}
	t.DropRow(0)
	return t
}
