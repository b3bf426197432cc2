// Package pipeline implements the sequential cleaning pipeline for the
// perfusion-mimick sheet: sanitize strings, resolve headers, fuse timepoints,
// resolve the narrative Date column, derive auxiliary columns, and cast the
// result against the metadata schema. The table is one mutable structure
// passed stage to stage; no stage reads ahead or behind its own step.
package pipeline

import (
	"regexp"
	"strings"

	"cartool/domain/table"
)

// nonDataSentinels are cell texts spreadsheet authors use to mean "no value".
// Matched exactly, after trimming.
var nonDataSentinels = map[string]bool{
	"Not acquired": true,
	"not acq":      true,
	"-":            true,
}

var newlineRe = regexp.MustCompile(`\n+`)

// SanitizeGrid normalizes every cell of the raw grid: whitespace trimmed,
// embedded newlines collapsed to single spaces, and non-data sentinels mapped
// to the missing-value marker. Cells containing the substring "Media"
// (case-sensitive) describe empty-media wells and become missing too. This is
// a total function; it never fails.
func SanitizeGrid(grid [][]string) [][]table.Value {
	out := make([][]table.Value, len(grid))
	for r, row := range grid {
		out[r] = make([]table.Value, len(row))
		for c, cell := range row {
			out[r][c] = sanitizeCell(cell)
		}
	}
	return out
}

func sanitizeCell(raw string) table.Value {
	s := strings.TrimSpace(raw)
	s = newlineRe.ReplaceAllString(s, " ")
	if s == "" {
		return table.NewMissingValue()
	}
	if strings.Contains(s, "Media") {
		return table.NewMissingValue()
	}
	if nonDataSentinels[s] {
		return table.NewMissingValue()
	}
	return table.NewStringValue(s)
}
