package cart

import (
	"context"
	"fmt"

	"github.com/dcamacho/danishop-backend/internal/modules/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog is the slice of the product catalog the cart needs.
type Catalog interface {
	GetActive(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error)
}

// Service defines the session cart business logic.
type Service interface {
	// Add puts one more unit of the product in the cart, clamped to the
	// product's current stock. A product with no stock is removed instead.
	Add(ctx context.Context, sessionID, productID string) (*AddResult, error)

	// Decrease removes one unit, dropping the line at zero.
	Decrease(ctx context.Context, sessionID, productID string) error

	// Remove drops the line entirely.
	Remove(ctx context.Context, sessionID, productID string) error

	// Clear empties the cart.
	Clear(ctx context.Context, sessionID string) error

	// Count is the badge number: the sum of all stored quantities.
	Count(ctx context.Context, sessionID string) (int, error)

	// View resolves the cart against the current catalog.
	View(ctx context.Context, sessionID string) (*View, error)
}

type service struct {
	store   Store
	catalog Catalog
}

// NewService creates a new cart service.
func NewService(store Store, cat Catalog) Service {
	return &service{store: store, catalog: cat}
}

func (s *service) Add(ctx context.Context, sessionID, productID string) (*AddResult, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	p, err := s.catalog.GetActive(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("product not found")
	}

	items, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	qty := items[productID] + 1
	if qty > p.Stock {
		qty = p.Stock
	}

	result := &AddResult{ProductID: productID, Quantity: qty}
	if qty <= 0 {
		delete(items, productID)
		result.Quantity = 0
		result.Removed = true
	} else {
		items[productID] = qty
	}

	if err := s.store.Save(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Decrease(ctx context.Context, sessionID, productID string) error {
	items, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	qty, ok := items[productID]
	if !ok {
		return nil
	}
	if qty-1 <= 0 {
		delete(items, productID)
	} else {
		items[productID] = qty - 1
	}
	return s.store.Save(ctx, sessionID, items)
}

func (s *service) Remove(ctx context.Context, sessionID, productID string) error {
	items, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	delete(items, productID)
	return s.store.Save(ctx, sessionID, items)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

func (s *service) Count(ctx context.Context, sessionID string) (int, error) {
	items, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, qty := range items {
		count += qty
	}
	return count, nil
}

func (s *service) View(ctx context.Context, sessionID string) (*View, error) {
	items, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &View{Items: []*Line{}, Total: decimal.Zero}
	ids := make([]uuid.UUID, 0, len(items))
	for pidStr, qty := range items {
		view.Count += qty
		if pid, err := uuid.Parse(pidStr); err == nil {
			ids = append(ids, pid)
		}
	}
	if len(ids) == 0 {
		return view, nil
	}

	products, err := s.catalog.ListActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Products missing here were deactivated or deleted after being added;
	// they stay in the session but never render.
	for _, p := range products {
		qty := items[p.ID.String()]
		if qty <= 0 {
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		view.Items = append(view.Items, &Line{Product: p, Quantity: qty, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}
