package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/gateway"
)

var errGatewayDown = errors.New("gateway down")

// fakeGateway is an in-memory backend with switchable failures.
type fakeGateway struct {
	stored     []core.Expense
	norm       core.Normalizer
	failCreate bool
	failDelete bool
	failUpdate bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{norm: core.NewNormalizer()}
}

func (f *fakeGateway) List(_ context.Context, _ gateway.ListParams) ([]core.Expense, error) {
	return append([]core.Expense(nil), f.stored...), nil
}

func (f *fakeGateway) Create(_ context.Context, payload core.NewExpense) (core.Expense, error) {
	if f.failCreate {
		return core.Expense{}, errGatewayDown
	}
	e := f.norm.FromPayload(payload)
	e.ID = "srv-" + e.ID
	f.stored = append([]core.Expense{e}, f.stored...)
	return e, nil
}

func (f *fakeGateway) Update(_ context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	if f.failUpdate {
		return core.Expense{}, errGatewayDown
	}
	for i, e := range f.stored {
		if e.ID == id {
			if patch.Name != nil {
				e.Name = *patch.Name
			}
			if patch.Amount != nil {
				e.Amount = *patch.Amount
			}
			if patch.Category != nil {
				e.Category = *patch.Category
			}
			f.stored[i] = e
			return e, nil
		}
	}
	return core.Expense{}, gateway.ErrNotFound
}

func (f *fakeGateway) Delete(_ context.Context, id string) error {
	if f.failDelete {
		return errGatewayDown
	}
	for i, e := range f.stored {
		if e.ID == id {
			f.stored = append(f.stored[:i], f.stored[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (f *fakeGateway) ByCategory(_ context.Context, _ core.Range) ([]core.CategoryTotal, error) {
	return core.ByCategory(f.stored), nil
}

func (f *fakeGateway) OverTime(_ context.Context, _ core.Range) ([]core.DayTotal, error) {
	return core.OverTime(f.stored), nil
}

func (f *fakeGateway) Summary(_ context.Context, _ core.Range) (core.Summary, error) {
	return core.Summarize(f.stored), nil
}

func seedWorkingSet(t *testing.T, c *Coordinator, names ...string) []core.Expense {
	t.Helper()
	ctx := context.Background()
	for _, name := range names {
		_, err := c.Create(ctx, core.NewExpense{Name: name, Amount: 10, Category: "Food"})
		require.NoError(t, err)
	}
	return c.WorkingSet()
}

func TestCreateOptimisticSuccess(t *testing.T) {
	gw := newFakeGateway()
	c := NewCoordinator(gw)

	created, err := c.Create(context.Background(), core.NewExpense{Name: "Coffee", Amount: 3.5, Category: "Food"})
	require.NoError(t, err)

	ws := c.WorkingSet()
	require.Len(t, ws, 1)
	assert.Equal(t, created, ws[0], "working set must hold the canonical server record")
	assert.Contains(t, created.ID, "srv-", "server identity wins over the optimistic one")
}

func TestCreateRollbackOnFailure(t *testing.T) {
	gw := newFakeGateway()
	c := NewCoordinator(gw)
	before := seedWorkingSet(t, c, "A", "B")

	gw.failCreate = true
	_, err := c.Create(context.Background(), core.NewExpense{Name: "C", Amount: 1, Category: "Food"})
	require.ErrorIs(t, err, errGatewayDown)

	assert.Equal(t, before, c.WorkingSet(), "working set must end exactly as before the attempt")
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	gw := newFakeGateway()
	c := NewCoordinator(gw)

	_, err := c.Create(context.Background(), core.NewExpense{Name: "x", Amount: -2})
	require.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, c.WorkingSet(), "invalid payload must never be applied optimistically")
}

func TestDeleteOptimisticThenRollback(t *testing.T) {
	gw := newFakeGateway()
	c := NewCoordinator(gw)
	seedWorkingSet(t, c, "A", "B", "C")

	before := c.WorkingSet() // [C, B, A] newest first
	target := before[1]

	gw.failDelete = true
	err := c.Delete(context.Background(), target.ID)
	require.ErrorIs(t, err, errGatewayDown)

	assert.Equal(t, before, c.WorkingSet(), "failed delete must restore the snapshot verbatim, order preserved")
}

func TestDeleteSuccess(t *testing.T) {
	gw := newFakeGateway()
	c := NewCoordinator(gw)
	seedWorkingSet(t, c, "A", "B", "C")

	before := c.WorkingSet()
	target := before[1]

	require.NoError(t, c.Delete(context.Background(), target.ID))

	after := c.WorkingSet()
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1])

	list, err := gw.List(context.Background(), gateway.ListParams{})
	require.NoError(t, err)
	assert.Len(t, list, 2, "backend must have confirmed the delete")
}

func TestDeleteUnknownID(t *testing.T) {
	gw := newFakeGateway()
	c := NewCoordinator(gw)
	before := seedWorkingSet(t, c, "A")

	err := c.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, gateway.ErrNotFound)
	assert.Equal(t, before, c.WorkingSet())
}

func TestUpdateRollbackOnFailure(t *testing.T) {
	gw := newFakeGateway()
	c := NewCoordinator(gw)
	before := seedWorkingSet(t, c, "A", "B")

	gw.failUpdate = true
	amount := 99.0
	_, err := c.Update(context.Background(), before[0].ID, core.ExpensePatch{Amount: &amount})
	require.ErrorIs(t, err, errGatewayDown)

	assert.Equal(t, before, c.WorkingSet())
}

func TestUpdateSuccess(t *testing.T) {
	gw := newFakeGateway()
	c := NewCoordinator(gw)
	ws := seedWorkingSet(t, c, "A")

	name := "Renamed"
	updated, err := c.Update(context.Background(), ws[0].ID, core.ExpensePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, ws[0].ID, updated.ID)
	assert.Equal(t, updated, c.WorkingSet()[0])
}

func TestLoadReplacesWorkingSet(t *testing.T) {
	gw := newFakeGateway()
	_, err := gw.Create(context.Background(), core.NewExpense{Name: "Seeded", Amount: 5, Category: "Food"})
	require.NoError(t, err)

	c := NewCoordinator(gw)
	require.NoError(t, c.Load(context.Background()))

	ws := c.WorkingSet()
	require.Len(t, ws, 1)
	assert.Equal(t, "Seeded", ws[0].Name)
}
