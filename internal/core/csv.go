package core

import (
	"strings"
	"time"
)

// ExportCSV serializes an aggregation result into a deterministic CSV
// document: a range header line, a by-category section and an over-time
// section separated by blank lines, all newline-joined.
func ExportCSV(rng Range, byCategory []CategoryTotal, overTime []DayTotal) string {
	lines := make([]string, 0, len(byCategory)+len(overTime)+5)

	lines = append(lines, "Range: "+string(rng), "")

	lines = append(lines, "category,total")
	for _, row := range byCategory {
		lines = append(lines, csvField(row.Category)+","+FormatAmount(row.Total))
	}

	lines = append(lines, "", "date,total")
	for _, row := range overTime {
		lines = append(lines, csvField(row.Date)+","+FormatAmount(row.Total))
	}

	return strings.Join(lines, "\n")
}

// CSVFilename names an export after the active range token and the current
// calendar date.
func CSVFilename(rng Range, now time.Time) string {
	return "expenses-" + string(rng) + "-" + now.Format("2006-01-02") + ".csv"
}

// csvField applies standard CSV quoting: a field containing a comma, double
// quote, or newline is wrapped in double quotes with inner quotes doubled.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
