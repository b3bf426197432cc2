package schema

import (
	"errors"
	"testing"

	"cartool/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		"Run":   {Type: TypeInt},
		"Notes": {Type: TypeString},
		"VCD":   {Type: TypeFloat, TimeDependent: true},
	}
}

func buildTable(t *testing.T, cols map[string][]table.Value, order []string) *table.Table {
	t.Helper()
	tbl := table.New()
	for _, name := range order {
		require.NoError(t, tbl.AppendColumn(name, cols[name]))
	}
	return tbl
}

func TestCasterAppliesTimeDependentPattern(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"Run":     {table.NewStringValue("1"), table.NewStringValue("2")},
		"Notes":   {table.NewStringValue("ok"), table.NewMissingValue()},
		"VCD_D-0": {table.NewStringValue("1200000"), table.NewStringValue("900000")},
		"VCD_D-3": {table.NewStringValue("3.5e6"), table.NewMissingValue()},
	}, []string{"Run", "Notes", "VCD_D-0", "VCD_D-3"})

	caster := NewCaster(testSchema(), CoverageLenient)
	warnings, err := caster.Apply(tbl)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// One declared base casts every matching timepoint column
	col, ok := tbl.Column("VCD_D-3")
	require.True(t, ok)
	assert.True(t, col.Cells[0].IsFloat())
	assert.Equal(t, 3.5e6, col.Cells[0].AsFloat())
	assert.True(t, col.Cells[1].IsMissing, "float cast keeps missing values")

	run, ok := tbl.Column("Run")
	require.True(t, ok)
	assert.True(t, run.Cells[0].IsInt())
	assert.Equal(t, int64(1), run.Cells[0].AsInt())
}

func TestCasterFailureNamesTimepointColumn(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"Run":     {table.NewStringValue("1")},
		"Notes":   {table.NewStringValue("ok")},
		"VCD_D-3": {table.NewStringValue("pending")},
	}, []string{"Run", "Notes", "VCD_D-3"})

	caster := NewCaster(testSchema(), CoverageLenient)
	_, err := caster.Apply(tbl)
	require.Error(t, err)

	var castErr *CastError
	require.True(t, errors.As(err, &castErr))
	assert.Equal(t, "VCD_D-3", castErr.Column)
	assert.Equal(t, TypeFloat, castErr.Type)
	assert.Equal(t, []int{0}, castErr.Rows)

	// Failed columns are left untouched
	col, _ := tbl.Column("VCD_D-3")
	assert.Equal(t, "pending", col.Cells[0].String())
}

func TestCasterIntFillsMissingWithZero(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"Run":   {table.NewMissingValue(), table.NewStringValue("3.0")},
		"Notes": {table.NewMissingValue(), table.NewMissingValue()},
	}, []string{"Run", "Notes"})

	caster := NewCaster(testSchema(), CoverageLenient)
	_, err := caster.Apply(tbl)
	require.NoError(t, err)

	run, _ := tbl.Column("Run")
	assert.Equal(t, int64(0), run.Cells[0].AsInt())
	assert.Equal(t, int64(3), run.Cells[1].AsInt(), "integral floats truncate")
}

func TestCasterIntRejectsFractionalValues(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"Run":   {table.NewStringValue("1"), table.NewStringValue("3.7")},
		"Notes": {table.NewMissingValue(), table.NewMissingValue()},
	}, []string{"Run", "Notes"})

	caster := NewCaster(testSchema(), CoverageLenient)
	_, err := caster.Apply(tbl)
	require.Error(t, err)

	var castErr *CastError
	require.True(t, errors.As(err, &castErr))
	assert.Equal(t, "Run", castErr.Column)
	assert.Equal(t, TypeInt, castErr.Type)
	assert.Equal(t, []int{1}, castErr.Rows)

	// The fractional cell must survive unchanged, not as a truncated int
	run, _ := tbl.Column("Run")
	assert.Equal(t, "3.7", run.Cells[1].String())
}

func TestCasterCoverageModes(t *testing.T) {
	build := func() *table.Table {
		return buildTable(t, map[string][]table.Value{
			"Run":     {table.NewStringValue("1")},
			"Notes":   {table.NewStringValue("ok")},
			"Mystery": {table.NewStringValue("x")},
		}, []string{"Run", "Notes", "Mystery"})
	}

	t.Run("strict aborts on unknown columns", func(t *testing.T) {
		caster := NewCaster(testSchema(), CoverageStrict)
		_, err := caster.Apply(build())
		require.Error(t, err)
		var covErr *CoverageError
		require.True(t, errors.As(err, &covErr))
		assert.Equal(t, "Mystery", covErr.Column)
	})

	t.Run("lenient reports and skips them", func(t *testing.T) {
		caster := NewCaster(testSchema(), CoverageLenient)
		warnings, err := caster.Apply(build())
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Equal(t, "Mystery", warnings[0].Column)
	})
}

func TestCasterRequiresDeclaredScalarColumns(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"Run": {table.NewStringValue("1")},
	}, []string{"Run"})

	caster := NewCaster(testSchema(), CoverageLenient)
	_, err := caster.Apply(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Notes"`)
}

func TestScanTimeSeriesReportsWithoutMutating(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"VCD_D-3": {
			table.NewStringValue("1200000"),
			table.NewStringValue("contaminated"),
			table.NewMissingValue(),
		},
	}, []string{"VCD_D-3"})

	caster := NewCaster(testSchema(), CoverageLenient)
	warnings := caster.ScanTimeSeries(tbl)
	require.Len(t, warnings, 1)
	assert.Equal(t, "VCD_D-3", warnings[0].Column)
	assert.Equal(t, []int{1}, warnings[0].Rows)

	col, _ := tbl.Column("VCD_D-3")
	assert.Equal(t, "contaminated", col.Cells[1].String(), "scan must not mutate the table")
}

func TestParseColumnTypeNormalizesMetadataNames(t *testing.T) {
	tests := []struct {
		raw      string
		expected ColumnType
	}{
		{"Int64", TypeInt},
		{"int", TypeInt},
		{"float64", TypeFloat},
		{"float", TypeFloat},
		{"string", TypeString},
		{"str", TypeString},
	}
	for _, tt := range tests {
		parsed, err := ParseColumnType(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, parsed)
	}

	_, err := ParseColumnType("complex128")
	assert.Error(t, err)
}

func TestDefaultSchemaDeclaresDerivedColumns(t *testing.T) {
	s := Default()
	for _, name := range []string{"Volume", "pH_Strategy", "Feeding_Strategy", "Type", "Run"} {
		_, ok := s[name]
		assert.True(t, ok, "expected %s in default schema", name)
	}
	assert.True(t, s["VCD"].TimeDependent)
	assert.Equal(t, TypeFloat, s["VCD"].Type)
}
