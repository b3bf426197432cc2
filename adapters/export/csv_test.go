package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cartool/domain/table"
)

func TestWriteTableRendersMissingAsEmpty(t *testing.T) {
	tbl := table.New()
	appendCol(t, tbl, "Date", table.NewStringValue("2024-01-03 to 2024-01-05"), table.NewMissingValue())
	appendCol(t, tbl, "Run", table.NewIntValue(1), table.NewIntValue(2))
	appendCol(t, tbl, "Volume", table.NewFloatValue(0.1), table.NewFloatValue(15))

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteTable(path, tbl); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Date,Run,Volume" {
		t.Errorf("Expected header row, got %q", lines[0])
	}
	if lines[1] != "2024-01-03 to 2024-01-05,1,0.1" {
		t.Errorf("Unexpected first row: %q", lines[1])
	}
	if lines[2] != ",2,15" {
		t.Errorf("Expected missing date rendered empty, got %q", lines[2])
	}
}

func TestReadTableRestoresMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	content := "Date,Run\n2024-01-03 to 2024-01-05,1\n,2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tbl, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if tbl.NumRows() != 2 || tbl.NumCols() != 2 {
		t.Fatalf("Expected 2x2 table, got %dx%d", tbl.NumRows(), tbl.NumCols())
	}
	if !tbl.Cell(1, 0).IsMissing {
		t.Error("Expected empty field restored as missing")
	}
	if tbl.Cell(0, 0).String() != "2024-01-03 to 2024-01-05" {
		t.Errorf("Unexpected cell value: %q", tbl.Cell(0, 0))
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	tbl := table.New()
	appendCol(t, tbl, "VCD_D-0", table.NewFloatValue(1200000), table.NewMissingValue())
	appendCol(t, tbl, "Notes", table.NewStringValue("fine"), table.NewStringValue("reviewed"))

	path := filepath.Join(t.TempDir(), "round.csv")
	if err := WriteTable(path, tbl); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	back, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	for r := 0; r < tbl.NumRows(); r++ {
		for c := 0; c < tbl.NumCols(); c++ {
			if tbl.Cell(r, c).String() != back.Cell(r, c).String() {
				t.Errorf("Cell (%d,%d) changed: %q vs %q", r, c, tbl.Cell(r, c), back.Cell(r, c))
			}
		}
	}
}

func TestReadTableRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := ReadTable(path); err == nil {
		t.Error("Expected error for a file with no header row")
	}
}

func appendCol(t *testing.T, tbl *table.Table, name string, cells ...table.Value) {
	t.Helper()
	if err := tbl.AppendColumn(name, cells); err != nil {
		t.Fatalf("AppendColumn %s failed: %v", name, err)
	}
}
