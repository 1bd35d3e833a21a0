package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

// SlotStore persists the whole expense sequence as a JSON array under one
// named slot. Writes are full-replace; a corrupt or missing slot reads as
// an empty sequence, never a fatal error.
type SlotStore struct {
	db   *sql.DB
	slot string
	norm core.Normalizer
}

func NewSlotStore(dbPath, slot string) (*SlotStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SlotStore{
		db:   db,
		slot: slot,
		norm: core.NewNormalizer(),
	}, nil
}

func (s *SlotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the slot and re-normalizes every record, so corrupted fields
// in persisted data are repaired on the way in.
func (s *SlotStore) Load(ctx context.Context) ([]core.Expense, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM slots WHERE name = ?`, s.slot,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []core.Expense{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", s.slot, err)
	}

	var raws []core.RawExpense
	if err := json.Unmarshal([]byte(payload), &raws); err != nil {
		slog.WarnContext(ctx, "Slot payload is corrupt, treating as empty",
			"slot", s.slot, "error", err)
		return []core.Expense{}, nil
	}

	return s.norm.NormalizeAll(raws), nil
}

// Save serializes the full sequence back to the slot.
func (s *SlotStore) Save(ctx context.Context, list []core.Expense) error {
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal expenses: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO slots (name, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		s.slot, string(payload))
	if err != nil {
		return fmt.Errorf("write slot %s: %w", s.slot, err)
	}

	return nil
}
