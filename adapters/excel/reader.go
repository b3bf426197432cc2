// Package excel handles workbook I/O at the pipeline boundary: reading a
// sheet into a raw grid and materializing merged cell ranges beforehand.
package excel

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
)

// PerfusionSheet is the sheet carrying the perfusion-mimick results
const PerfusionSheet = "Main Results - Perfusion Mimick"

// FedBatchSheet is the companion fed-batch sheet; loaded but not cleaned yet
const FedBatchSheet = "Main Results - Fed Batch"

// GridReader reads raw sheet grids from a workbook. No header row is assumed;
// header promotion is the pipeline's responsibility.
type GridReader struct {
	filePath string
}

// NewGridReader creates a reader for the given workbook file
func NewGridReader(filePath string) *GridReader {
	return &GridReader{filePath: filePath}
}

// ReadGrid reads one sheet fully into memory as a grid of raw cell strings
func (r *GridReader) ReadGrid(sheetName string) ([][]string, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", r.filePath)
	}

	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q must have at least a header row and one data row", sheetName)
	}

	log.Printf("[GridReader] sheet %q read in %.2fms (%d rows)",
		sheetName, float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return rows, nil
}
