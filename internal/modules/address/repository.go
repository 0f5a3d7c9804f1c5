package address

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines address persistence operations.
type Repository interface {
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Address, error)
	// SetDefault marks one address as the default and clears the flag on the
	// user's other addresses in the same transaction.
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}
