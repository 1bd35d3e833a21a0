package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// OtherCategory labels the synthetic row produced by top-N collapsing.
const OtherCategory = "Other"

type (
	// CategoryTotal is one row of a by-category breakdown.
	CategoryTotal struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}

	// DayTotal is one row of a spending-over-time breakdown, keyed by the
	// record's local calendar day.
	DayTotal struct {
		Date  string  `json:"date"`
		Total float64 `json:"total"`
	}

	// Summary is the scalar overview of a filtered set.
	Summary struct {
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}
)

// Round2 rounds to two decimal places, half away from zero. Rounding is
// applied only to final group totals, never to intermediate partial sums.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatAmount renders a total with exactly two decimals for display and
// CSV output.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ByCategory folds expenses into one row per distinct category, ordered
// descending by total with ties kept in first-seen order.
func ByCategory(list []Expense) []CategoryTotal {
	sums := make(map[string]float64)
	var order []string
	for _, e := range list {
		cat := e.Category
		if cat == "" {
			cat = DefaultCategory
		}
		if _, seen := sums[cat]; !seen {
			order = append(order, cat)
		}
		sums[cat] += e.Amount
	}

	rows := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		rows = append(rows, CategoryTotal{Category: cat, Total: Round2(sums[cat])})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows
}

// OverTime folds expenses into one row per distinct calendar day, ascending
// by date. Records with unparsable createdAt are excluded here but still
// count toward ByCategory and Summarize.
func OverTime(list []Expense) []DayTotal {
	sums := make(map[string]float64)
	for _, e := range list {
		t, ok := ParseCreatedAt(e.CreatedAt)
		if !ok {
			continue
		}
		day := t.Format("2006-01-02")
		sums[day] += e.Amount
	}

	rows := make([]DayTotal, 0, len(sums))
	for day, total := range sums {
		rows = append(rows, DayTotal{Date: day, Total: Round2(total)})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Date < rows[j].Date
	})
	return rows
}

// Summarize computes the scalar total and count over a filtered set.
func Summarize(list []Expense) Summary {
	var total float64
	for _, e := range list {
		total += e.Amount
	}
	return Summary{Total: Round2(total), Count: len(list)}
}

// CollapseTopN reduces a ranked by-category breakdown to its n largest rows
// plus one synthetic "Other" row holding the remainder. The "Other" row is
// appended only when the remainder is strictly positive.
func CollapseTopN(rows []CategoryTotal, n int) []CategoryTotal {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	kept := make([]CategoryTotal, n, n+1)
	copy(kept, rows[:n])

	var rest float64
	for _, row := range rows[n:] {
		rest += row.Total
	}
	if rest > 0 {
		kept = append(kept, CategoryTotal{Category: OtherCategory, Total: Round2(rest)})
	}
	return kept
}
