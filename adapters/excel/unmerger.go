package excel

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"
)

// UnmergeAndFill materializes every merged cell range in every sheet of the
// workbook at pathIn: the range is unmerged and each covered cell receives the
// range's top-left value. The result is written to pathOut, leaving the input
// untouched. The cleaning pipeline depends on this so that repeated header
// and metadata values are explicit instead of implied by merge geometry.
func UnmergeAndFill(pathIn, pathOut string) error {
	f, err := excelize.OpenFile(pathIn)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheetName := range f.GetSheetList() {
		merges, err := f.GetMergeCells(sheetName)
		if err != nil {
			return fmt.Errorf("failed to list merged cells in sheet %q: %w", sheetName, err)
		}

		for _, merge := range merges {
			topLeft := merge.GetCellValue()
			startAxis := merge.GetStartAxis()
			endAxis := merge.GetEndAxis()
			log.Printf("[Unmerger] filling merged range %s:%s in sheet %q", startAxis, endAxis, sheetName)

			if err := f.UnmergeCell(sheetName, startAxis, endAxis); err != nil {
				return fmt.Errorf("failed to unmerge %s:%s in sheet %q: %w", startAxis, endAxis, sheetName, err)
			}
			if err := fillRange(f, sheetName, startAxis, endAxis, topLeft); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(pathOut); err != nil {
		return fmt.Errorf("failed to save workbook to %s: %w", pathOut, err)
	}
	return nil
}

// fillRange writes value into every cell of the rectangle spanned by the two
// axes
func fillRange(f *excelize.File, sheetName, startAxis, endAxis, value string) error {
	startCol, startRow, err := excelize.CellNameToCoordinates(startAxis)
	if err != nil {
		return fmt.Errorf("invalid range start %q: %w", startAxis, err)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(endAxis)
	if err != nil {
		return fmt.Errorf("invalid range end %q: %w", endAxis, err)
	}

	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return fmt.Errorf("invalid coordinates (%d,%d): %w", col, row, err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to fill cell %s in sheet %q: %w", cell, sheetName, err)
			}
		}
	}
	return nil
}
