package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/gateway"
)

// LocalGateway serves the persistence contract from the durable slot. All
// insight computation happens in-process over the stored set. Mutation
// events are published when an AMQP client is configured; publish failures
// never fail the mutation.
type LocalGateway struct {
	store  *SlotStore
	events *amqp.Client
	norm   core.Normalizer
	now    func() time.Time
}

func NewLocalGateway(store *SlotStore, events *amqp.Client) *LocalGateway {
	return &LocalGateway{
		store:  store,
		events: events,
		norm:   core.NewNormalizer(),
		now:    time.Now,
	}
}

// List implements gateway.ExpenseLister, newest first.
func (g *LocalGateway) List(ctx context.Context, params gateway.ListParams) ([]core.Expense, error) {
	list, err := g.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	if params.Range != "" {
		list = core.FilterByRange(list, params.Range, g.now())
	}
	if params.Category != "" {
		filtered := list[:0]
		for _, e := range list {
			if e.Category == params.Category {
				filtered = append(filtered, e)
			}
		}
		list = filtered
	}

	sort.SliceStable(list, func(i, j int) bool {
		return strings.Compare(list[i].CreatedAt, list[j].CreatedAt) > 0
	})
	return list, nil
}

// Create implements gateway.ExpenseWriter.
func (g *LocalGateway) Create(ctx context.Context, payload core.NewExpense) (core.Expense, error) {
	if err := payload.Validate(); err != nil {
		return core.Expense{}, err
	}

	list, err := g.store.Load(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	e := g.norm.FromPayload(payload)
	list = append([]core.Expense{e}, list...)

	if err := g.store.Save(ctx, list); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	g.publish(ctx, amqp.ActionCreated, e.ID)

	slog.InfoContext(ctx, "Expense saved to slot",
		"expense_id", e.ID,
		"name", e.Name,
		"amount", e.Amount,
		"category", e.Category)

	return e, nil
}

// Update implements gateway.ExpenseWriter. The record is re-normalized and
// replaced by id; identity and creation timestamp are never reassigned.
func (g *LocalGateway) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	list, err := g.store.Load(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	idx := -1
	for i, e := range list {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Expense{}, gateway.ErrNotFound
	}

	e := list[idx]
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	e = g.norm.Normalize(core.RawExpense{
		ID:        e.ID,
		Name:      e.Name,
		Amount:    e.Amount,
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
	})
	list[idx] = e

	if err := g.store.Save(ctx, list); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	g.publish(ctx, amqp.ActionUpdated, e.ID)

	return e, nil
}

// Delete implements gateway.ExpenseWriter.
func (g *LocalGateway) Delete(ctx context.Context, id string) error {
	list, err := g.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	kept := make([]core.Expense, 0, len(list))
	for _, e := range list {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(list) {
		return gateway.ErrNotFound
	}

	if err := g.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	g.publish(ctx, amqp.ActionDeleted, id)

	return nil
}

// ByCategory implements gateway.InsightsReader.
func (g *LocalGateway) ByCategory(ctx context.Context, rng core.Range) ([]core.CategoryTotal, error) {
	list, err := g.loadInRange(ctx, rng)
	if err != nil {
		return nil, err
	}
	return core.ByCategory(list), nil
}

// OverTime implements gateway.InsightsReader.
func (g *LocalGateway) OverTime(ctx context.Context, rng core.Range) ([]core.DayTotal, error) {
	list, err := g.loadInRange(ctx, rng)
	if err != nil {
		return nil, err
	}
	return core.OverTime(list), nil
}

// Summary implements gateway.InsightsReader.
func (g *LocalGateway) Summary(ctx context.Context, rng core.Range) (core.Summary, error) {
	list, err := g.loadInRange(ctx, rng)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(list), nil
}

func (g *LocalGateway) loadInRange(ctx context.Context, rng core.Range) ([]core.Expense, error) {
	list, err := g.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return core.FilterByRange(list, rng, g.now()), nil
}

func (g *LocalGateway) publish(ctx context.Context, action, expenseID string) {
	if g.events == nil {
		return
	}
	if err := g.events.PublishExpenseEvent(ctx, action, expenseID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", action,
			"expense_id", expenseID,
			"error", err)
		// Don't fail the mutation - the slot write already succeeded
	}
}
