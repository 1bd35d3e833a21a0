package services

import (
	"context"
	"fmt"
	"sync"

	"budget/internal/backend"
	"budget/internal/core"
	"budget/internal/gateway"
)

// Coordinator orchestrates mutations against the gateway with optimistic
// working-set updates: apply the effect immediately, confirm with the
// backend, revert on failure. The working set is only a disposable copy;
// the active backend remains the source of truth.
//
// It exists for embedding clients that render a local copy of the ledger
// and want mutations reflected before the backend confirms, such as a
// desktop or TUI frontend. The HTTP server does not need it: its callers
// hold no working set, so handlers mutate the gateway directly.
//
// One mutation runs at a time. A snapshot is held for exactly one in-flight
// mutation and never shared between two.
type Coordinator struct {
	mu      sync.Mutex
	gateway backend.Gateway
	norm    core.Normalizer
	working []core.Expense
}

func NewCoordinator(gw backend.Gateway) *Coordinator {
	return &Coordinator{
		gateway: gw,
		norm:    core.NewNormalizer(),
	}
}

// Load replaces the working set with the backend's current listing.
func (c *Coordinator) Load(ctx context.Context) error {
	list, err := c.gateway.List(ctx, gateway.ListParams{})
	if err != nil {
		return fmt.Errorf("load working set: %w", err)
	}

	c.mu.Lock()
	c.working = list
	c.mu.Unlock()
	return nil
}

// WorkingSet returns a copy of the current working set for rendering.
func (c *Coordinator) WorkingSet() []core.Expense {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Expense(nil), c.working...)
}

// Create normalizes the payload, prepends it optimistically, then confirms
// with the gateway. On success the optimistic record is replaced by the
// backend's canonical one; on failure it is removed, leaving the working
// set exactly as it was before the attempt.
func (c *Coordinator) Create(ctx context.Context, payload core.NewExpense) (core.Expense, error) {
	if err := payload.Validate(); err != nil {
		return core.Expense{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	optimistic := c.norm.FromPayload(payload)
	c.working = append([]core.Expense{optimistic}, c.working...)

	created, err := c.gateway.Create(ctx, payload)
	if err != nil {
		c.removeByID(optimistic.ID)
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	for i := range c.working {
		if c.working[i].ID == optimistic.ID {
			c.working[i] = created
			break
		}
	}
	return created, nil
}

// Delete removes the record optimistically, retaining a snapshot of the
// whole pre-mutation working set. A failed gateway call restores the
// snapshot verbatim, order included.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := append([]core.Expense(nil), c.working...)
	if !c.removeByID(id) {
		return gateway.ErrNotFound
	}

	if err := c.gateway.Delete(ctx, id); err != nil {
		c.working = snapshot
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// Update replaces the record in place optimistically and confirms with the
// gateway, restoring the snapshot on failure.
func (c *Coordinator) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := append([]core.Expense(nil), c.working...)
	idx := c.indexOf(id)
	if idx < 0 {
		return core.Expense{}, gateway.ErrNotFound
	}

	optimistic := c.working[idx]
	if patch.Name != nil {
		optimistic.Name = *patch.Name
	}
	if patch.Amount != nil {
		optimistic.Amount = *patch.Amount
	}
	if patch.Category != nil {
		optimistic.Category = *patch.Category
	}
	c.working[idx] = c.norm.Normalize(core.RawExpense{
		ID:        optimistic.ID,
		Name:      optimistic.Name,
		Amount:    optimistic.Amount,
		Category:  optimistic.Category,
		CreatedAt: optimistic.CreatedAt,
	})

	updated, err := c.gateway.Update(ctx, id, patch)
	if err != nil {
		c.working = snapshot
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	c.working[idx] = updated
	return updated, nil
}

// removeByID drops the record from the working set, reporting whether it
// was present. Callers hold the mutex.
func (c *Coordinator) removeByID(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.working = append(c.working[:idx:idx], c.working[idx+1:]...)
	return true
}

func (c *Coordinator) indexOf(id string) int {
	for i, e := range c.working {
		if e.ID == id {
			return i
		}
	}
	return -1
}
