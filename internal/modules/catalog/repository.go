package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for catalog products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error

	// GetByID returns a product regardless of its active flag (operator view).
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// GetActive returns a product only if it is active.
	GetActive(ctx context.Context, id uuid.UUID) (*Product, error)

	// ListActive returns active products matching the browse filters.
	ListActive(ctx context.Context, params ListParams) ([]*Product, error)

	// ListActiveByIDs resolves a set of product IDs to the active products
	// among them. Missing or inactive IDs are simply absent from the result.
	ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
}
