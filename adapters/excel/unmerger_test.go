package excel

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeMergedWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", "RUN 1 3-5 January 2024"); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}
	if err := f.MergeCell(sheet, "A1", "B2"); err != nil {
		t.Fatalf("MergeCell failed: %v", err)
	}
	if err := f.SetCellValue(sheet, "C1", "unmerged"); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
}

func TestUnmergeAndFill(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "merged.xlsx")
	out := filepath.Join(dir, "unmerged.xlsx")
	writeMergedWorkbook(t, in)

	if err := UnmergeAndFill(in, out); err != nil {
		t.Fatalf("UnmergeAndFill failed: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("Failed to open output workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		t.Fatalf("GetMergeCells failed: %v", err)
	}
	if len(merges) != 0 {
		t.Errorf("Expected no merged ranges left, got %d", len(merges))
	}

	// Every cell of the former range carries the top-left value
	for _, cell := range []string{"A1", "B1", "A2", "B2"} {
		v, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue %s failed: %v", cell, err)
		}
		if v != "RUN 1 3-5 January 2024" {
			t.Errorf("Expected %s to carry the merged value, got %q", cell, v)
		}
	}

	// Cells outside the range stay untouched
	v, err := f.GetCellValue(sheet, "C1")
	if err != nil {
		t.Fatalf("GetCellValue C1 failed: %v", err)
	}
	if v != "unmerged" {
		t.Errorf("Expected C1 untouched, got %q", v)
	}
}

func TestUnmergeAndFillMissingFile(t *testing.T) {
	if err := UnmergeAndFill(filepath.Join(t.TempDir(), "absent.xlsx"), "out.xlsx"); err == nil {
		t.Error("Expected error for missing workbook")
	}
}

func TestReadGridRequiresDataRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thin.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", "Date"); err != nil {
		t.Fatalf("SetCellValue failed: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	f.Close()

	if _, err := NewGridReader(path).ReadGrid(sheet); err == nil {
		t.Error("Expected error for a sheet with no data rows")
	}
}

func TestReadGridFedBatchSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workbook.xlsx")

	f := excelize.NewFile()
	if _, err := f.NewSheet(FedBatchSheet); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	for cell, value := range map[string]string{"A1": "Date", "A2": "3-5 January 2024"} {
		if err := f.SetCellValue(FedBatchSheet, cell, value); err != nil {
			t.Fatalf("SetCellValue failed: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	f.Close()

	grid, err := NewGridReader(path).ReadGrid(FedBatchSheet)
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if len(grid) != 2 || grid[0][0] != "Date" {
		t.Errorf("Expected fed batch rows to load, got %v", grid)
	}
}

func TestReadGridRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "Date", "B1": "Donor",
		"A2": "3-5 January 2024", "B2": "5",
	}
	for cell, value := range cells {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("SetCellValue failed: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	f.Close()

	grid, err := NewGridReader(path).ReadGrid(sheet)
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(grid))
	}
	if grid[0][0] != "Date" || grid[1][1] != "5" {
		t.Errorf("Expected cell values to round-trip, got %v", grid)
	}
}
