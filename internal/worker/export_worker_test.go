package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

func newTestWorker(t *testing.T) (*ExportWorker, *storage.SlotStore) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSlotStore(filepath.Join(dir, "test.db"), "expenses")
	if err != nil {
		t.Fatalf("NewSlotStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	w := NewExportWorker(store, filepath.Join(dir, "exports"))
	w.now = func() time.Time {
		return time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	}
	return w, store
}

func TestRegenerateAllWritesOneSnapshotPerRange(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	err := store.Save(ctx, []core.Expense{
		{ID: "a", Name: "Coffee", Amount: 3.5, Category: "Food", CreatedAt: "2026-02-01T10:00:00Z"},
		{ID: "b", Name: "Rent", Amount: 800, Category: "Housing", CreatedAt: "2025-11-01T10:00:00Z"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := w.RegenerateAll(ctx); err != nil {
		t.Fatalf("RegenerateAll: %v", err)
	}

	for _, rng := range []core.Range{core.RangeWeek, core.RangeMonth, core.RangeAll} {
		path := filepath.Join(w.dir, w.SnapshotName(rng))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing snapshot for range %q: %v", rng, err)
		}
	}

	all, err := os.ReadFile(filepath.Join(w.dir, w.SnapshotName(core.RangeAll)))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(all), "Housing,800.00") {
		t.Errorf("all-range snapshot should contain the old expense, got:\n%s", all)
	}

	month, err := os.ReadFile(filepath.Join(w.dir, w.SnapshotName(core.RangeMonth)))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(month), "Housing") {
		t.Errorf("30-day snapshot must exclude a three-month-old expense, got:\n%s", month)
	}
	if !strings.Contains(string(month), "Food,3.50") {
		t.Errorf("30-day snapshot should contain the recent expense, got:\n%s", month)
	}
}

func TestHandleExpenseEventRegenerates(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	err := store.Save(ctx, []core.Expense{
		{ID: "a", Name: "Coffee", Amount: 3.5, Category: "Food", CreatedAt: "2026-02-01T10:00:00Z"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	msg := amqp.NewExpenseEventMessage(amqp.ActionCreated, "a")
	if err := w.HandleExpenseEvent(msg); err != nil {
		t.Fatalf("HandleExpenseEvent: %v", err)
	}

	if _, err := os.Stat(filepath.Join(w.dir, w.SnapshotName(core.RangeAll))); err != nil {
		t.Errorf("expected snapshot after event: %v", err)
	}
}

func TestRegenerateAllEmptyLedger(t *testing.T) {
	w, _ := newTestWorker(t)

	if err := w.RegenerateAll(context.Background()); err != nil {
		t.Fatalf("RegenerateAll on empty ledger: %v", err)
	}

	body, err := os.ReadFile(filepath.Join(w.dir, w.SnapshotName(core.RangeAll)))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(body), "category,total") {
		t.Errorf("empty snapshot still carries its headers, got:\n%s", body)
	}
}
