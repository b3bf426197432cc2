// Package profiling summarizes the numeric columns of a cleaned table so an
// operator can sanity-check an export before analysis.
package profiling

import (
	"fmt"
	"sort"

	"cartool/domain/perfusion"
	"cartool/domain/table"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds descriptive statistics for one numeric column
type ColumnSummary struct {
	Column       string  `json:"column"`
	Count        int     `json:"count"`
	MissingCount int     `json:"missing_count"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
}

// MetricSeries is one time-series metric across its day offsets, in day order
type MetricSeries struct {
	Base      string          `json:"base"`
	Summaries []ColumnSummary `json:"summaries"`
}

// SummarizeTable profiles every numeric column of the table. Timepoint
// columns are grouped per base metric and ordered by day offset; single-value
// numeric columns are returned alongside.
func SummarizeTable(t *table.Table) (singles []ColumnSummary, series []MetricSeries, err error) {
	byBase := make(map[string][]struct {
		day     int
		summary ColumnSummary
	})

	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		data, missing := numericCells(col)
		if len(data) == 0 {
			continue
		}

		summary, err := summarize(col.Name, data, missing)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to summarize column %q: %w", col.Name, err)
		}

		if composite, ok := perfusion.ParseComposite(col.Name); ok {
			byBase[composite.Base] = append(byBase[composite.Base], struct {
				day     int
				summary ColumnSummary
			}{composite.Day, summary})
			continue
		}
		singles = append(singles, summary)
	}

	bases := make([]string, 0, len(byBase))
	for base := range byBase {
		bases = append(bases, base)
	}
	sort.Strings(bases)
	for _, base := range bases {
		points := byBase[base]
		sort.Slice(points, func(a, b int) bool { return points[a].day < points[b].day })
		s := MetricSeries{Base: base}
		for _, p := range points {
			s.Summaries = append(s.Summaries, p.summary)
		}
		series = append(series, s)
	}
	return singles, series, nil
}

// numericCells collects the numeric values of a column, skipping any column
// holding non-numeric text
func numericCells(col *table.Column) (data []float64, missing int) {
	for _, cell := range col.Cells {
		if cell.IsMissing {
			missing++
			continue
		}
		f, ok := cell.Numeric()
		if !ok {
			return nil, 0
		}
		data = append(data, f)
	}
	return data, missing
}

func summarize(name string, data []float64, missing int) (ColumnSummary, error) {
	s := ColumnSummary{Column: name, Count: len(data), MissingCount: missing}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Q25, err = stats.Percentile(data, 25); err != nil {
		return s, err
	}
	if s.Q75, err = stats.Percentile(data, 75); err != nil {
		return s, err
	}

	if len(data) >= 3 {
		s.Skewness = stat.Skew(data, nil)
	}
	if len(data) >= 4 {
		s.Kurtosis = stat.ExKurtosis(data, nil)
	}
	return s, nil
}
