package gateway

import (
	"context"
	"errors"

	"budget/internal/core"
)

// ErrNotFound is returned when a mutation targets an id the backend does
// not hold.
var ErrNotFound = errors.New("expense not found")

// ListParams narrows a listing. Zero values mean no filtering.
type ListParams struct {
	Category string
	Range    core.Range
}

// Ports for the persistence backends. Both variants expose the same
// contract; callers never learn which one is active.
type (
	ExpenseLister interface {
		// List returns expenses newest-first, optionally filtered.
		List(ctx context.Context, params ListParams) ([]core.Expense, error)
	}

	ExpenseWriter interface {
		Create(ctx context.Context, payload core.NewExpense) (core.Expense, error)
		Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error)
		Delete(ctx context.Context, id string) error
	}

	// InsightsReader serves the aggregate views. The result shape is
	// identical across variants; where the computation happens is not.
	InsightsReader interface {
		ByCategory(ctx context.Context, rng core.Range) ([]core.CategoryTotal, error)
		OverTime(ctx context.Context, rng core.Range) ([]core.DayTotal, error)
		Summary(ctx context.Context, rng core.Range) (core.Summary, error)
	}
)
