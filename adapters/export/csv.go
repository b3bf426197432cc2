// Package export serializes the cleaned table artifact.
package export

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"cartool/domain/table"
)

// WriteTable writes the cleaned table as a delimited file, one row per run,
// columns in pipeline order. Missing values render as empty fields.
func WriteTable(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for r := 0; r < t.NumRows(); r++ {
		if err := w.Write(t.Row(r)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush output file: %w", err)
	}

	log.Printf("[Export] wrote %d row(s), %d column(s) to %s", t.NumRows(), t.NumCols(), path)
	return nil
}

// ReadTable loads a previously exported file back into a table, with empty
// fields restored as missing values. Used by the standalone validation step
// that re-checks a reviewed artifact against the schema.
func ReadTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("file %s has no header row", path)
	}

	headers := records[0]
	t := table.New()
	for c, name := range headers {
		cells := make([]table.Value, len(records)-1)
		for r, record := range records[1:] {
			if c < len(record) && record[c] != "" {
				cells[r] = table.NewStringValue(record[c])
			} else {
				cells[r] = table.NewMissingValue()
			}
		}
		if err := t.AppendColumn(name, cells); err != nil {
			return nil, fmt.Errorf("failed to rebuild column %q: %w", name, err)
		}
	}
	return t, nil
}
