package cart

import (
	"context"
	"testing"

	"github.com/dcamacho/danishop-backend/internal/modules/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products map[uuid.UUID]*catalog.Product
}

func (f *fakeCatalog) GetActive(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, assert.AnError
	}
	return p, nil
}

func (f *fakeCatalog) ListActiveByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestProduct(price string, stock int) *catalog.Product {
	return &catalog.Product{
		ID:       uuid.New(),
		Name:     "Brownie Clásico",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
}

func TestAddClampsToStock(t *testing.T) {
	p := newTestProduct("10.00", 2)
	svc := NewService(NewMemoryStore(), &fakeCatalog{products: map[uuid.UUID]*catalog.Product{p.ID: p}})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := svc.Add(ctx, "s1", p.ID.String())
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Quantity, 2)
	}

	count, err := svc.Count(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddOutOfStockRemovesLine(t *testing.T) {
	p := newTestProduct("10.00", 0)
	svc := NewService(NewMemoryStore(), &fakeCatalog{products: map[uuid.UUID]*catalog.Product{p.ID: p}})
	ctx := context.Background()

	res, err := svc.Add(ctx, "s1", p.ID.String())
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, 0, res.Quantity)

	count, err := svc.Count(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAddUnknownProduct(t *testing.T) {
	svc := NewService(NewMemoryStore(), &fakeCatalog{products: map[uuid.UUID]*catalog.Product{}})

	_, err := svc.Add(context.Background(), "s1", uuid.NewString())
	assert.Error(t, err)
}

func TestDecreaseDropsLineAtZero(t *testing.T) {
	p := newTestProduct("10.00", 5)
	svc := NewService(NewMemoryStore(), &fakeCatalog{products: map[uuid.UUID]*catalog.Product{p.ID: p}})
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", p.ID.String())
	require.NoError(t, err)

	require.NoError(t, svc.Decrease(ctx, "s1", p.ID.String()))

	view, err := svc.View(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.Count)
}

func TestViewDropsStaleProducts(t *testing.T) {
	live := newTestProduct("12.50", 10)
	gone := newTestProduct("8.00", 10)
	cat := &fakeCatalog{products: map[uuid.UUID]*catalog.Product{live.ID: live, gone.ID: gone}}
	svc := NewService(NewMemoryStore(), cat)
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", live.ID.String())
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", gone.ID.String())
	require.NoError(t, err)

	// Deactivate after it was added.
	delete(cat.products, gone.ID)

	view, err := svc.View(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, live.ID, view.Items[0].Product.ID)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("12.50")))

	// The badge still counts what the session stores.
	assert.Equal(t, 2, view.Count)
}

func TestViewComputesSubtotals(t *testing.T) {
	p := newTestProduct("3.50", 10)
	svc := NewService(NewMemoryStore(), &fakeCatalog{products: map[uuid.UUID]*catalog.Product{p.ID: p}})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Add(ctx, "s1", p.ID.String())
		require.NoError(t, err)
	}

	view, err := svc.View(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].Subtotal.Equal(decimal.RequireFromString("10.50")))
	assert.True(t, view.Total.Equal(decimal.RequireFromString("10.50")))
}

func TestClear(t *testing.T) {
	p := newTestProduct("10.00", 5)
	svc := NewService(NewMemoryStore(), &fakeCatalog{products: map[uuid.UUID]*catalog.Product{p.ID: p}})
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", p.ID.String())
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "s1"))

	count, err := svc.Count(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSessionsAreIsolated(t *testing.T) {
	p := newTestProduct("10.00", 5)
	svc := NewService(NewMemoryStore(), &fakeCatalog{products: map[uuid.UUID]*catalog.Product{p.ID: p}})
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", p.ID.String())
	require.NoError(t, err)

	count, err := svc.Count(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
