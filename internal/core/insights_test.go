package core

import (
	"fmt"
	"math"
	"sort"
	"testing"
)

func TestByCategoryOrderingAndKeys(t *testing.T) {
	list := []Expense{
		{Category: "Food", Amount: 10, CreatedAt: "2026-01-01"},
		{Category: "Transport", Amount: 30, CreatedAt: "2026-01-01"},
		{Category: "Food", Amount: 5, CreatedAt: "2026-01-02"},
		{Category: "", Amount: 2, CreatedAt: "2026-01-02"},
	}

	rows := ByCategory(list)

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Total > rows[i-1].Total {
			t.Fatalf("rows not non-increasing at %d: %v", i, rows)
		}
	}
	if rows[0].Category != "Transport" || rows[0].Total != 30 {
		t.Fatalf("unexpected top row: %+v", rows[0])
	}
	seen := map[string]bool{}
	for _, row := range rows {
		if seen[row.Category] {
			t.Fatalf("duplicate category key %q", row.Category)
		}
		seen[row.Category] = true
	}
	if !seen[DefaultCategory] {
		t.Fatal("blank category not folded into sentinel")
	}
}

func TestByCategoryTieBreakFirstSeen(t *testing.T) {
	list := []Expense{
		{Category: "B", Amount: 5},
		{Category: "A", Amount: 5},
	}

	rows := ByCategory(list)

	if rows[0].Category != "B" || rows[1].Category != "A" {
		t.Fatalf("ties must keep first-seen order, got %v", rows)
	}
}

func TestSummaryMatchesCategoryTotals(t *testing.T) {
	var list []Expense
	for i := 0; i < 50; i++ {
		list = append(list, Expense{
			Category:  fmt.Sprintf("cat-%d", i%7),
			Amount:    float64(i) * 1.01,
			CreatedAt: "2026-01-01T00:00:00Z",
		})
	}

	var catSum float64
	for _, row := range ByCategory(list) {
		catSum += row.Total
	}
	s := Summarize(list)

	if math.Abs(catSum-s.Total) > 0.01 {
		t.Fatalf("category totals %v diverge from summary %v", catSum, s.Total)
	}
	if s.Count != len(list) {
		t.Fatalf("count %d, want %d", s.Count, len(list))
	}
}

func TestOverTimeExcludesUnparsableButSummaryCounts(t *testing.T) {
	list := []Expense{
		{Category: "Food", Amount: 10, CreatedAt: "2026-01-02T10:00:00Z"},
		{Category: "Food", Amount: 2.5, CreatedAt: "2026-01-02T18:00:00Z"},
		{Category: "Food", Amount: 4, CreatedAt: "2026-01-01T09:00:00Z"},
		{Category: "Food", Amount: 99, CreatedAt: "not-a-date"},
	}

	rows := OverTime(list)

	if len(rows) != 2 {
		t.Fatalf("expected 2 day rows, got %v", rows)
	}
	if !sort.SliceIsSorted(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date }) {
		t.Fatalf("day rows not ascending: %v", rows)
	}
	if rows[0].Date != "2026-01-01" || rows[1].Date != "2026-01-02" || rows[1].Total != 12.5 {
		t.Fatalf("unexpected rows: %v", rows)
	}

	// The unparsable record stays in the scalar summary and category totals.
	if s := Summarize(list); s.Count != 4 || s.Total != 115.5 {
		t.Fatalf("summary must count unparsable records: %+v", s)
	}
	if rows := ByCategory(list); rows[0].Total != 115.5 {
		t.Fatalf("category totals must count unparsable records: %v", rows)
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{12.345, 12.35},
		{12.344, 12.34},
		{2.675, 2.68},
		{0, 0},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Fatalf("Round2(%v)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCollapseTopN(t *testing.T) {
	var rows []CategoryTotal
	for i := 0; i < 12; i++ {
		rows = append(rows, CategoryTotal{
			Category: fmt.Sprintf("cat-%d", i),
			Total:    float64(12-i) * 10, // 120, 110, ... 10
		})
	}

	collapsed := CollapseTopN(rows, 9)

	if len(collapsed) != 10 {
		t.Fatalf("expected 9 kept + Other, got %d rows", len(collapsed))
	}
	other := collapsed[9]
	if other.Category != OtherCategory {
		t.Fatalf("last row should be %q, got %q", OtherCategory, other.Category)
	}
	if other.Total != 60 { // 30 + 20 + 10
		t.Fatalf("Other total %v, want 60", other.Total)
	}
}

func TestCollapseTopNNoRemainder(t *testing.T) {
	rows := []CategoryTotal{{Category: "A", Total: 5}, {Category: "B", Total: 3}}

	if got := CollapseTopN(rows, 9); len(got) != 2 {
		t.Fatalf("small result must be untouched, got %v", got)
	}
	zero := []CategoryTotal{{"A", 2}, {"B", 1}, {"C", 0}}
	if got := CollapseTopN(zero, 2); len(got) != 2 {
		t.Fatalf("zero remainder must not produce an Other row, got %v", got)
	}
}
