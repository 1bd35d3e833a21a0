package cache

import (
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/services"
)

func snapshotFor(rng core.Range, total float64) services.InsightsSnapshot {
	return services.InsightsSnapshot{
		Range:   rng,
		Summary: core.Summary{Total: total, Count: 1},
	}
}

func TestGetReturnsFreshSnapshot(t *testing.T) {
	c := NewInsightsCache(time.Minute)
	c.Set(snapshotFor(core.RangeMonth, 10))

	snap, ok := c.Get(core.RangeMonth)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if snap.Summary.Total != 10 {
		t.Errorf("Total = %v, want 10", snap.Summary.Total)
	}

	if _, ok := c.Get(core.RangeWeek); ok {
		t.Error("unexpected hit for a range that was never cached")
	}
}

func TestExpiredSnapshotIsMiss(t *testing.T) {
	c := NewInsightsCache(time.Nanosecond)
	c.Set(snapshotFor(core.RangeMonth, 10))
	time.Sleep(time.Millisecond)

	if _, ok := c.Get(core.RangeMonth); ok {
		t.Error("expected a miss after the TTL elapsed")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0 after lazy eviction", c.Size())
	}
}

func TestInvalidateAllDropsEverything(t *testing.T) {
	c := NewInsightsCache(time.Minute)
	c.Set(snapshotFor(core.RangeWeek, 1))
	c.Set(snapshotFor(core.RangeMonth, 2))
	c.Set(snapshotFor(core.RangeAll, 3))

	c.InvalidateAll()

	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0", c.Size())
	}
}

func TestCleanExpiredCountsRemovals(t *testing.T) {
	c := NewInsightsCache(time.Nanosecond)
	c.Set(snapshotFor(core.RangeWeek, 1))
	c.Set(snapshotFor(core.RangeMonth, 2))
	time.Sleep(time.Millisecond)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired = %d, want 2", removed)
	}
}
