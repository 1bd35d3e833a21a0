package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"budget/internal/core"
	"budget/internal/gateway"
)

// ErrStale marks an insight query that resolved after a newer one started.
// Callers discard the result silently; it is not a failure to report.
var ErrStale = errors.New("insight query superseded")

// InsightsSnapshot is one consistent set of aggregate views for a range.
type InsightsSnapshot struct {
	Range      core.Range
	ByCategory []core.CategoryTotal
	Collapsed  []core.CategoryTotal
	OverTime   []core.DayTotal
	Summary    core.Summary
}

// InsightsView serves aggregate queries for one display surface. The three
// views of a refresh run concurrently; they are pure reads over the same
// range and never block each other. A monotonic generation token ensures a
// superseded refresh can never overwrite a newer one.
type InsightsView struct {
	insights    gateway.InsightsReader
	categoryCap int

	seq     atomic.Uint64
	mu      sync.Mutex
	current InsightsSnapshot
}

func NewInsightsView(insights gateway.InsightsReader, categoryCap int) *InsightsView {
	return &InsightsView{
		insights:    insights,
		categoryCap: categoryCap,
	}
}

// Refresh queries all three aggregate views for the range and installs the
// result as current. When a newer Refresh has started in the meantime the
// result is discarded and ErrStale returned.
func (v *InsightsView) Refresh(ctx context.Context, rng core.Range) (InsightsSnapshot, error) {
	token := v.seq.Add(1)

	snap := InsightsSnapshot{Range: rng}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := v.insights.ByCategory(ctx, rng)
		if err != nil {
			return err
		}
		snap.ByCategory = rows
		return nil
	})
	g.Go(func() error {
		rows, err := v.insights.OverTime(ctx, rng)
		if err != nil {
			return err
		}
		snap.OverTime = rows
		return nil
	})
	g.Go(func() error {
		s, err := v.insights.Summary(ctx, rng)
		if err != nil {
			return err
		}
		snap.Summary = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return InsightsSnapshot{}, err
	}

	snap.Collapsed = core.CollapseTopN(snap.ByCategory, v.categoryCap)

	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.seq.Load() {
		return InsightsSnapshot{}, ErrStale
	}
	v.current = snap
	return snap, nil
}

// Current returns the latest installed snapshot.
func (v *InsightsView) Current() InsightsSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}
