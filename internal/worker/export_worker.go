package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

// ExportWorker keeps CSV snapshots of the aggregate views on disk, one file
// per range token. Every confirmed mutation event triggers a regeneration,
// so the newest snapshot always reflects the ledger.
type ExportWorker struct {
	store *storage.SlotStore
	dir   string
	now   func() time.Time
}

func NewExportWorker(store *storage.SlotStore, dir string) *ExportWorker {
	return &ExportWorker{
		store: store,
		dir:   dir,
		now:   time.Now,
	}
}

// HandleExpenseEvent reacts to a mutation event by regenerating every
// snapshot. The event only says the ledger changed; which range files are
// affected cannot be known without recomputing them all.
func (w *ExportWorker) HandleExpenseEvent(msg *amqp.ExpenseEventMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.InfoContext(ctx, "Processing expense event",
		"action", msg.Action,
		"expense_id", msg.ExpenseID)

	return w.RegenerateAll(ctx)
}

// RegenerateAll rebuilds the CSV snapshot for every known range token.
func (w *ExportWorker) RegenerateAll(ctx context.Context) error {
	list, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	now := w.now()
	for _, rng := range []core.Range{core.RangeWeek, core.RangeMonth, core.RangeAll} {
		filtered := core.FilterByRange(list, rng, now)
		body := core.ExportCSV(rng, core.ByCategory(filtered), core.OverTime(filtered))

		if err := w.writeSnapshot(rng, body); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "CSV snapshots regenerated",
		"dir", w.dir,
		"expenses", len(list))
	return nil
}

// writeSnapshot replaces the snapshot file atomically so a concurrent
// reader never sees a half-written export.
func (w *ExportWorker) writeSnapshot(rng core.Range, body string) error {
	final := filepath.Join(w.dir, w.SnapshotName(rng))
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, []byte(body), 0644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", final, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", final, err)
	}
	return nil
}

// SnapshotName returns the stable file name for a range's latest snapshot.
func (w *ExportWorker) SnapshotName(rng core.Range) string {
	return "expenses-" + string(rng) + ".csv"
}
