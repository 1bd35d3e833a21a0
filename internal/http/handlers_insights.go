package http

import (
	"errors"
	"net/http"
	"time"

	"budget/internal/core"
	"budget/internal/services"
)

type summaryOut struct {
	TotalSpent   float64 `json:"total_spent"`
	ExpenseCount int     `json:"expense_count"`
	AvgExpense   float64 `json:"avg_expense"`
}

type insightsOut struct {
	ByCategory    []core.CategoryTotal `json:"by_category"`
	TopCategories []core.CategoryTotal `json:"top_categories"`
	OverTime      []core.DayTotal      `json:"over_time"`
	Summary       summaryOut           `json:"summary"`
}

// maxSnapshotRetries caps how often a request re-runs a superseded refresh
// before giving up.
const maxSnapshotRetries = 3

// snapshot serves a cached set of aggregates when fresh, otherwise runs a
// refresh. A refresh superseded by one for the same range yields that newer
// result; superseded by a different range, it runs again a bounded number
// of times.
func (s *Server) snapshot(r *http.Request) (services.InsightsSnapshot, error) {
	rng := core.ParseRange(r.URL.Query().Get("range"))

	if snap, ok := s.cache.Get(rng); ok {
		return snap, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxSnapshotRetries; attempt++ {
		snap, err := s.insights.Refresh(r.Context(), rng)
		if err == nil {
			s.cache.Set(snap)
			return snap, nil
		}
		if !errors.Is(err, services.ErrStale) {
			return services.InsightsSnapshot{}, err
		}
		if cur := s.insights.Current(); cur.Range == rng {
			return cur, nil
		}
		lastErr = err
	}
	return services.InsightsSnapshot{}, lastErr
}

func summaryWire(sum core.Summary) summaryOut {
	avg := 0.0
	if sum.Count > 0 {
		avg = sum.Total / float64(sum.Count)
	}
	return summaryOut{
		TotalSpent:   core.Round2(sum.Total),
		ExpenseCount: sum.Count,
		AvgExpense:   core.Round2(avg),
	}
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insightsOut{
		ByCategory:    emptyIfNil(snap.ByCategory),
		TopCategories: emptyIfNil(snap.Collapsed),
		OverTime:      emptyIfNilDays(snap.OverTime),
		Summary:       summaryWire(snap.Summary),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryWire(snap.Summary))
}

func (s *Server) handleByCategory(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(snap.ByCategory))
}

func (s *Server) handleOverTime(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNilDays(snap.OverTime))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	body := core.ExportCSV(snap.Range, snap.ByCategory, snap.OverTime)
	filename := core.CSVFilename(snap.Range, time.Now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func emptyIfNil(rows []core.CategoryTotal) []core.CategoryTotal {
	if rows == nil {
		return []core.CategoryTotal{}
	}
	return rows
}

func emptyIfNilDays(rows []core.DayTotal) []core.DayTotal {
	if rows == nil {
		return []core.DayTotal{}
	}
	return rows
}
