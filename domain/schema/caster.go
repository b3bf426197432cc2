package schema

import (
	"fmt"
	"math"

	"cartool/domain/perfusion"
	"cartool/domain/table"
)

// CoverageMode controls what happens when the table carries a column the
// schema does not declare
type CoverageMode string

const (
	// CoverageStrict aborts validation on unknown columns
	CoverageStrict CoverageMode = "strict"
	// CoverageLenient reports unknown columns as warnings and skips them
	CoverageLenient CoverageMode = "lenient"
)

// Warning is an advisory, operator-facing diagnostic
type Warning struct {
	Column  string
	Rows    []int
	Message string
}

func (w Warning) String() string {
	if len(w.Rows) > 0 {
		return fmt.Sprintf("column %q: %s (rows %v)", w.Column, w.Message, w.Rows)
	}
	return fmt.Sprintf("column %q: %s", w.Column, w.Message)
}

// CoverageError reports a table column the schema does not declare; fatal
// only under CoverageStrict
type CoverageError struct {
	Column string
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("column %q is not in the schema", e.Column)
}

// CastError is the fatal outcome of a coercion failure. It names the
// offending column and row indices so the operator can correct the source
// spreadsheet.
type CastError struct {
	Column string
	Type   ColumnType
	Rows   []int
	Cause  error
}

func (e *CastError) Error() string {
	if len(e.Rows) > 0 {
		return fmt.Sprintf("failed to convert column %q to %s: non-coercible values at rows %v", e.Column, e.Type, e.Rows)
	}
	return fmt.Sprintf("failed to convert column %q to %s: %v", e.Column, e.Type, e.Cause)
}

func (e *CastError) Unwrap() error {
	return e.Cause
}

// Caster casts every table column to its declared type. This is the one stage
// of the pipeline permitted to abort.
type Caster struct {
	schema   Schema
	coverage CoverageMode
}

// NewCaster creates a caster for the given schema and coverage mode
func NewCaster(s Schema, coverage CoverageMode) *Caster {
	return &Caster{schema: s, coverage: coverage}
}

// Apply validates schema coverage and casts every declared column in place.
// Returned warnings are advisory; a non-nil error means the cast aborted.
func (c *Caster) Apply(t *table.Table) ([]Warning, error) {
	warnings, err := c.checkCoverage(t)
	if err != nil {
		return warnings, err
	}

	for _, base := range c.schema.SortedNames() {
		entry := c.schema[base]
		if entry.TimeDependent {
			pattern := perfusion.CompositePattern(base)
			for i := 0; i < t.NumCols(); i++ {
				col := t.ColumnAt(i)
				if pattern.MatchString(col.Name) {
					if err := castColumn(col, entry.Type); err != nil {
						return warnings, err
					}
				}
			}
			continue
		}

		col, ok := t.Column(base)
		if !ok {
			return warnings, fmt.Errorf("schema column %q is missing from the table", base)
		}
		if err := castColumn(col, entry.Type); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// ScanTimeSeries reports non-numeric values sitting in declared-numeric
// timepoint columns without mutating the table. These are the advisory
// diagnostics of the lenient path; the cast itself treats them as fatal.
func (c *Caster) ScanTimeSeries(t *table.Table) []Warning {
	var warnings []Warning
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		composite, ok := perfusion.ParseComposite(col.Name)
		if !ok {
			continue
		}
		entry, declared := c.schema[composite.Base]
		if !declared || entry.Type == TypeString {
			continue
		}
		var rows []int
		for r, cell := range col.Cells {
			if cell.IsMissing {
				continue
			}
			if _, numeric := cell.Numeric(); !numeric {
				rows = append(rows, r)
			}
		}
		if len(rows) > 0 {
			warnings = append(warnings, Warning{
				Column:  col.Name,
				Rows:    rows,
				Message: "non-numeric values found in declared-numeric time-series column",
			})
		}
	}
	return warnings
}

// checkCoverage verifies every table column is declared, either directly or
// through its composite base name
func (c *Caster) checkCoverage(t *table.Table) ([]Warning, error) {
	var warnings []Warning
	for _, name := range t.Names() {
		base := name
		if composite, ok := perfusion.ParseComposite(name); ok {
			base = composite.Base
		}
		if _, declared := c.schema[base]; declared {
			continue
		}
		if c.coverage == CoverageStrict {
			return warnings, &CoverageError{Column: base}
		}
		warnings = append(warnings, Warning{
			Column:  name,
			Message: "column is not in the schema, skipped",
		})
	}
	return warnings, nil
}

// castColumn applies the per-type casting strategy to one column in place
func castColumn(col *table.Column, target ColumnType) error {
	var badRows []int
	cast := make([]table.Value, len(col.Cells))

	for i, cell := range col.Cells {
		switch target {
		case TypeInt:
			// int-like columns fill missing with 0; a fractional value is a
			// coercion failure, not a truncation
			if cell.IsMissing {
				cast[i] = table.NewIntValue(0)
				continue
			}
			f, ok := cell.Numeric()
			if !ok || f != math.Trunc(f) {
				badRows = append(badRows, i)
				continue
			}
			cast[i] = table.NewIntValue(int64(f))
		case TypeFloat:
			// float columns keep missing values
			if cell.IsMissing {
				cast[i] = cell
				continue
			}
			f, ok := cell.Numeric()
			if !ok {
				badRows = append(badRows, i)
				continue
			}
			cast[i] = table.NewFloatValue(f)
		case TypeString:
			if cell.IsMissing {
				cast[i] = cell
				continue
			}
			cast[i] = table.NewStringValue(cell.String())
		default:
			return fmt.Errorf("column %q: unsupported cast target %q", col.Name, target)
		}
	}

	if len(badRows) > 0 {
		return &CastError{
			Column: col.Name,
			Type:   target,
			Rows:   badRows,
			Cause:  fmt.Errorf("values are not coercible to %s", target),
		}
	}
	col.Cells = cast
	return nil
}
