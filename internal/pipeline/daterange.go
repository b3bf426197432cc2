package pipeline

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"cartool/domain/table"
	"cartool/internal/errors"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
	runRe     = regexp.MustCompile(`(?i)RUN\s*(\d+)`)
	donorRe   = regexp.MustCompile(`(?i)Donor\s*(\d+)`)

	// same-month form: "3-5 January 2024"
	sameMonthRe = regexp.MustCompile(`(\d{1,2})\s*[-–]\s*(\d{1,2})\s*([A-Za-z]+)\s*(\d{4})`)
	// cross-month form: "28 January - 2 February 2024"
	crossMonthRe = regexp.MustCompile(`(\d{1,2})\s*([A-Za-z]+)\s*[-–]\s*(\d{1,2})\s*([A-Za-z]+)\s*(\d{4})`)
)

// ResolveDateColumn parses the free-text Date cells into a run number, a
// donor id, and a normalized "<start> to <end>" date-range string. Malformed
// text never raises here; it degrades to missing values and the integrity
// decision is deferred to the run-id backfill and the schema cast.
func ResolveDateColumn(t *table.Table) error {
	dateCol, ok := t.Column("Date")
	if !ok {
		return errors.Structural("table has no Date column")
	}

	rows := t.NumRows()
	cleaned := make([]string, rows)
	for r := 0; r < rows; r++ {
		cleaned[r] = strings.TrimSpace(htmlTagRe.ReplaceAllString(dateCol.Cells[r].String(), ""))
	}

	// Run numbers from "RUN <digits>", missing when absent
	runCells := make([]table.Value, rows)
	for r := 0; r < rows; r++ {
		if m := runRe.FindStringSubmatch(cleaned[r]); m != nil {
			runCells[r] = table.NewStringValue(m[1])
		} else {
			runCells[r] = table.NewMissingValue()
		}
	}

	// Donor ids overwrite the Donor column only where a new value is found
	donorCol, ok := t.Column("Donor")
	if !ok {
		return errors.Structural("table has no Donor column")
	}
	for r := 0; r < rows; r++ {
		if m := donorRe.FindStringSubmatch(cleaned[r]); m != nil {
			donorCol.Cells[r] = table.NewStringValue(m[1])
		}
	}

	// Normalize the date range; unparsable narrative text becomes missing
	for r := 0; r < rows; r++ {
		if rangeStr, ok := extractDateRange(cleaned[r]); ok {
			dateCol.Cells[r] = table.NewStringValue(rangeStr)
		} else {
			dateCol.Cells[r] = table.NewMissingValue()
		}
	}

	// Run sits immediately after Date in the cleaned artifact
	if err := t.AppendColumn("Run", runCells); err != nil {
		return errors.Wrap(err, "failed to insert Run column")
	}
	if err := t.MoveColumnAfter("Run", "Date"); err != nil {
		return errors.Wrap(err, "failed to reposition Run column")
	}

	backfillRuns(t)
	return nil
}

// extractDateRange tries the two recognized grammars in order and renders the
// match as "<ISO-start> to <ISO-end>"
func extractDateRange(text string) (string, bool) {
	if m := sameMonthRe.FindStringSubmatch(text); m != nil {
		start, ok1 := parseDayMonthYear(m[1], m[3], m[4])
		end, ok2 := parseDayMonthYear(m[2], m[3], m[4])
		if ok1 && ok2 {
			return fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")), true
		}
		return "", false
	}
	if m := crossMonthRe.FindStringSubmatch(text); m != nil {
		start, ok1 := parseDayMonthYear(m[1], m[2], m[5])
		end, ok2 := parseDayMonthYear(m[3], m[4], m[5])
		if ok1 && ok2 {
			return fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")), true
		}
	}
	return "", false
}

// parseDayMonthYear parses "<day> <month-word> <year>" accepting full and
// abbreviated English month names in any letter case
func parseDayMonthYear(day, month, year string) (time.Time, bool) {
	month = capitalize(month)
	for _, layout := range []string{"2 January 2006", "2 Jan 2006"} {
		if ts, err := time.Parse(layout, fmt.Sprintf("%s %s %s", day, month, year)); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

// backfillRuns synthesizes run numbers for rows that carry none. Rows are
// grouped by their final Date string (rows with an unparsable date form one
// group under the missing marker, so every row ends up with a run number).
// For each group whose rows all lack a Run, the candidate starts at the
// group's enumeration index + 1 and probes upward until it collides with no
// run number present anywhere in the column. Group enumeration follows
// first-seen row order; the ordering is an implementation-defined tiebreak,
// not a semantic property.
func backfillRuns(t *table.Table) {
	dateCol, _ := t.Column("Date")
	runCol, _ := t.Column("Run")
	rows := t.NumRows()

	taken := make(map[int64]bool)
	for _, cell := range runCol.Cells {
		if !cell.IsMissing {
			if n, ok := cell.Numeric(); ok {
				taken[int64(n)] = true
			}
		}
	}

	var order []string
	groups := make(map[string][]int)
	for r := 0; r < rows; r++ {
		key := dateCol.Cells[r].String()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	for i, key := range order {
		members := groups[key]
		allMissing := true
		for _, r := range members {
			if !runCol.Cells[r].IsMissing {
				allMissing = false
				break
			}
		}
		if !allMissing {
			continue
		}

		candidate := int64(i + 1)
		for taken[candidate] {
			candidate++
		}
		taken[candidate] = true
		for _, r := range members {
			runCol.Cells[r] = table.NewIntValue(candidate)
		}
		log.Printf("[DateResolver] synthesized run %d for %d row(s) with date %q", candidate, len(members), key)
	}
}
