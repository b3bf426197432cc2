package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cartool/domain/perfusion"
	"cartool/domain/table"
	"cartool/internal/errors"
)

// MergeTimepoints fuses each time-dependent column name with the day offset
// stored in the first data row at that column position, producing composite
// names like "VCD_D-7". The source sheet lays out one column group per
// timepoint, so the same canonical name occurs at several positions; each
// position is fused independently with its own row-0 value, which is what
// makes the duplicated names distinct. The sourcing row is dropped afterwards
// and row indices stay contiguous.
//
// A non-integer timepoint cell is a hard failure naming the column: letting it
// through would corrupt the schema cast downstream.
func MergeTimepoints(t *table.Table, labels perfusion.Labels) error {
	if t.NumRows() == 0 {
		return errors.Structural("cannot merge timepoints: table has no rows")
	}

	canonical := labels.TimeDependent.CanonicalSet()
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		if !canonical[col.Name] {
			continue
		}
		day, err := timepointDay(col.Cells[0])
		if err != nil {
			return errors.Wrapf(err, "invalid timepoint for metric %q (column %d)", col.Name, i)
		}
		col.Name = perfusion.CompositeColumn{Base: col.Name, Day: day}.Name()
	}
	t.DropRow(0)

	if err := t.EnsureUniqueNames(); err != nil {
		return errors.Wrap(errors.Structural(err.Error()), "timepoint merge produced a name collision")
	}
	return nil
}

// timepointDay parses a raw timepoint cell into a non-negative day offset.
// Sheets sometimes render day numbers as floats ("3.0"), which still count as
// integer-like.
func timepointDay(cell table.Value) (int, error) {
	if cell.IsMissing {
		return 0, fmt.Errorf("timepoint cell is missing")
	}
	raw := strings.TrimSpace(cell.String())
	if day, err := strconv.Atoi(raw); err == nil {
		if day < 0 {
			return 0, fmt.Errorf("timepoint %d is negative", day)
		}
		return day, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("timepoint %q is not an integer day offset", raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("timepoint %q is negative", raw)
	}
	return int(f), nil
}
