package pipeline

import (
	"testing"

	"cartool/domain/perfusion"
)

func TestResolveHeadersRenamesAndDropsHeaderRow(t *testing.T) {
	grid := SanitizeGrid([][]string{
		{"Date", "ambr15 run", "Viable cell density (cell/mL)", "Custom notes"},
		{"RUN 1", "15mL run A", "1200000", "fine"},
	})

	tbl := ResolveHeaders(grid, perfusion.DefaultLabels())

	expected := []string{"Date", "AMBR15_Run", "VCD", "Custom notes"}
	names := tbl.Names()
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Expected column %d to be %q, got %q", i, name, names[i])
		}
	}
	if tbl.NumRows() != 1 {
		t.Fatalf("Expected header row dropped, got %d rows", tbl.NumRows())
	}
	if tbl.Cell(0, 0).String() != "RUN 1" {
		t.Errorf("Expected first data row to survive, got %q", tbl.Cell(0, 0))
	}
}

func TestResolveHeadersUsesExactLookup(t *testing.T) {
	// "Viability (%) extra" is not the exact label text, so it must not rename
	grid := SanitizeGrid([][]string{
		{"Viability (%)", "Viability (%) extra"},
		{"95", "94"},
	})

	tbl := ResolveHeaders(grid, perfusion.DefaultLabels())
	if tbl.ColumnAt(0).Name != "Viability" {
		t.Errorf("Expected exact label to rename, got %q", tbl.ColumnAt(0).Name)
	}
	if tbl.ColumnAt(1).Name != "Viability (%) extra" {
		t.Errorf("Expected partial label to pass through, got %q", tbl.ColumnAt(1).Name)
	}
}

func TestResolveHeadersKeepsDuplicateMetricNames(t *testing.T) {
	// The same metric appears once per timepoint group; names stay duplicated
	// until the timepoint merger makes them unique
	grid := SanitizeGrid([][]string{
		{"Viable cell density (cell/mL)", "Viable cell density (cell/mL)"},
		{"0", "3"},
	})

	tbl := ResolveHeaders(grid, perfusion.DefaultLabels())
	if tbl.ColumnAt(0).Name != "VCD" || tbl.ColumnAt(1).Name != "VCD" {
		t.Errorf("Expected both columns named VCD, got %v", tbl.Names())
	}
}

func TestResolveHeadersEmptyGrid(t *testing.T) {
	tbl := ResolveHeaders(nil, perfusion.DefaultLabels())
	if tbl.NumCols() != 0 || tbl.NumRows() != 0 {
		t.Errorf("Expected empty table, got %dx%d", tbl.NumRows(), tbl.NumCols())
	}
}
