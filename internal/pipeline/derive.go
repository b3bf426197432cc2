package pipeline

import (
	"log"
	"regexp"
	"strings"
	"time"

	"cartool/domain/table"
	"cartool/internal/errors"
)

var (
	stbVolumeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mL`)
	wellCountRe = regexp.MustCompile(`(\d+)\s*-?\s*(?:well|wp)`)
	phWordRe    = regexp.MustCompile(`(?i)\bpH\b`)
)

// wellVolumes maps static-plate well counts to working volume in liters
var wellVolumes = map[string]float64{
	"48": 0.4,
	"24": 0.1,
}

// defaultPH is the pH setpoint assumed when neither Conditions nor Notes
// mention one
const defaultPH = 7.3

// feedingCutoff: runs ending on or after this date followed feeding scheme A
var feedingCutoff = time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)

// DeriveColumns computes the auxiliary Volume, pH_Strategy and
// Feeding_Strategy columns from already-resolved ones and inserts them right
// after System. All three are best-effort enrichments: missing inputs
// propagate to missing outputs. The returned count is the number of rows
// whose pH strategy needs manual review.
func DeriveColumns(t *table.Table) (int, error) {
	systemPos := t.Index("System")
	if systemPos < 0 {
		return 0, errors.Structural("table has no System column to anchor derived columns")
	}

	if err := t.InsertColumnAt(systemPos+1, "Volume", deriveVolume(t)); err != nil {
		return 0, errors.Wrap(err, "failed to insert Volume column")
	}
	phCells, reviewCount := derivePHStrategy(t)
	if err := t.InsertColumnAt(systemPos+2, "pH_Strategy", phCells); err != nil {
		return 0, errors.Wrap(err, "failed to insert pH_Strategy column")
	}
	if err := t.InsertColumnAt(systemPos+3, "Feeding_Strategy", deriveFeedingStrategy(t)); err != nil {
		return 0, errors.Wrap(err, "failed to insert Feeding_Strategy column")
	}

	log.Printf("[Derive] found %d row(s) with pH mentioned needing manual review", reviewCount)
	log.Printf("[Derive] rows without a feeding strategy need manual classification")
	return reviewCount, nil
}

// deriveVolume reads the working volume from AMBR15_Run text for STB runs and
// from the static-plate well count for Static runs
func deriveVolume(t *table.Table) []table.Value {
	cells := t.ConstantColumn(table.NewMissingValue())
	systemCol, _ := t.Column("System")
	ambrCol, hasAmbr := t.Column("AMBR15_Run")
	staticCol, hasStatic := t.Column("Static_Run")

	for r := range cells {
		switch systemCol.Cells[r].AsString() {
		case "STB":
			if !hasAmbr {
				continue
			}
			if m := stbVolumeRe.FindStringSubmatch(ambrCol.Cells[r].String()); m != nil {
				cells[r] = table.NewStringValue(m[1])
			}
		case "Static":
			if !hasStatic {
				continue
			}
			if m := wellCountRe.FindStringSubmatch(staticCol.Cells[r].String()); m != nil {
				if vol, known := wellVolumes[m[1]]; known {
					cells[r] = table.NewFloatValue(vol)
				}
			}
		}
	}
	return cells
}

// derivePHStrategy defaults every row to the standard setpoint and overrides
// it with the literal Conditions or Notes text where those mention pH as a
// whole word; Notes wins when both match. Overridden rows are the ones
// needing manual review.
func derivePHStrategy(t *table.Table) ([]table.Value, int) {
	cells := t.ConstantColumn(table.NewFloatValue(defaultPH))
	conditionsCol, hasConditions := t.Column("Conditions")
	notesCol, hasNotes := t.Column("Notes")

	reviewCount := 0
	for r := range cells {
		overridden := false
		if hasConditions && !conditionsCol.Cells[r].IsMissing && phWordRe.MatchString(conditionsCol.Cells[r].AsString()) {
			cells[r] = conditionsCol.Cells[r]
			overridden = true
		}
		if hasNotes && !notesCol.Cells[r].IsMissing && phWordRe.MatchString(notesCol.Cells[r].AsString()) {
			cells[r] = notesCol.Cells[r]
			overridden = true
		}
		if overridden {
			reviewCount++
		}
	}
	return cells, reviewCount
}

// deriveFeedingStrategy labels rows by the end date of their run: scheme "A"
// from the cutoff onwards, missing (manual classification) before it
func deriveFeedingStrategy(t *table.Table) []table.Value {
	cells := t.ConstantColumn(table.NewMissingValue())
	dateCol, ok := t.Column("Date")
	if !ok {
		return cells
	}

	for r := range cells {
		parts := strings.Split(dateCol.Cells[r].String(), " to ")
		if len(parts) != 2 {
			continue
		}
		end, err := time.Parse("2006-01-02", parts[1])
		if err != nil {
			continue
		}
		if !end.Before(feedingCutoff) {
			cells[r] = table.NewStringValue("A")
		}
	}
	return cells
}
