package pipeline

import (
	stderrors "errors"
	"fmt"
	"log"

	"cartool/domain/perfusion"
	"cartool/domain/schema"
	"cartool/domain/table"
	"cartool/internal/errors"
)

// Options configures the pipeline. The historical near-duplicate cleaning
// variants differed only in schema source, schema-coverage strictness and
// presence of derived columns, so those differences are explicit flags here
// instead of parallel code paths.
type Options struct {
	Labels perfusion.Labels
	Schema schema.Schema
	// StrictSchema aborts on table columns the schema does not declare;
	// otherwise they are reported and skipped
	StrictSchema bool
	// DeriveColumns enables the Volume / pH_Strategy / Feeding_Strategy
	// enrichment stage
	DeriveColumns bool
}

// DefaultOptions runs the full lenient pipeline with the built-in vocabulary
// and schema
func DefaultOptions() Options {
	return Options{
		Labels:        perfusion.DefaultLabels(),
		Schema:        schema.Default(),
		DeriveColumns: true,
	}
}

// Diagnostic is an advisory, operator-facing finding. Diagnostics never
// affect the exit path in lenient mode.
type Diagnostic struct {
	Stage   string
	Column  string
	Rows    []int
	Message string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("[%s] %s", d.Stage, d.Message)
	if d.Column != "" {
		s = fmt.Sprintf("[%s] column %q: %s", d.Stage, d.Column, d.Message)
	}
	if len(d.Rows) > 0 {
		s = fmt.Sprintf("%s (rows %v)", s, d.Rows)
	}
	return s
}

// Result is the cleaned artifact plus the diagnostics gathered on the way
type Result struct {
	Table       *table.Table
	Diagnostics []Diagnostic
}

// Run executes the cleaning pipeline over one raw sheet grid: sanitize,
// resolve headers, fuse timepoints, resolve the Date column, optionally
// derive auxiliary columns, and cast against the schema. The grid is expected
// to be rectangular with merged ranges already materialized by the unmerger.
func Run(grid [][]string, opts Options) (*Result, error) {
	log.Printf("[Pipeline] cleaning grid with %d rows", len(grid))

	t := ResolveHeaders(SanitizeGrid(grid), opts.Labels)

	if err := MergeTimepoints(t, opts.Labels); err != nil {
		return nil, err
	}
	if err := ResolveDateColumn(t); err != nil {
		return nil, err
	}

	// Type sits right after Run, one constant per cleaned sheet
	if err := t.InsertColumnAt(t.Index("Run")+1, "Type", t.ConstantColumn(table.NewStringValue("Perfusion"))); err != nil {
		return nil, errors.Wrap(err, "failed to insert Type column")
	}

	result := &Result{Table: t}

	if opts.DeriveColumns {
		reviewCount, err := DeriveColumns(t)
		if err != nil {
			return nil, err
		}
		if reviewCount > 0 {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   "Derive",
				Column:  "pH_Strategy",
				Message: fmt.Sprintf("%d row(s) with pH mentioned need manual review", reviewCount),
			})
		}
	}

	coverage := schema.CoverageLenient
	if opts.StrictSchema {
		coverage = schema.CoverageStrict
	}
	caster := schema.NewCaster(opts.Schema, coverage)

	for _, w := range caster.ScanTimeSeries(t) {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Stage:   "SchemaCaster",
			Column:  w.Column,
			Rows:    w.Rows,
			Message: w.Message,
		})
	}

	warnings, err := caster.Apply(t)
	for _, w := range warnings {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Stage:   "SchemaCaster",
			Column:  w.Column,
			Rows:    w.Rows,
			Message: w.Message,
		})
	}
	if err != nil {
		return nil, classifyCastError(err)
	}

	log.Printf("[Pipeline] cleaned table has %d run row(s), %d column(s), %d diagnostic(s)",
		t.NumRows(), t.NumCols(), len(result.Diagnostics))
	return result, nil
}

// classifyCastError maps caster failures onto the error taxonomy so callers
// can tell coverage violations from coercion failures
func classifyCastError(err error) error {
	var castErr *schema.CastError
	if stderrors.As(err, &castErr) {
		return errors.CastFailure(castErr.Column, err)
	}
	var covErr *schema.CoverageError
	if stderrors.As(err, &covErr) {
		return errors.WithCode(errors.CodeSchemaCoverage, err)
	}
	return errors.WithCode(errors.CodeStructural, err)
}
