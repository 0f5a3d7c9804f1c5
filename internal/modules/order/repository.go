package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// CreateOrder persists a new order and its items atomically in a transaction.
	CreateOrder(ctx context.Context, o *Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetByCode retrieves an order with its items by its human-facing code.
	GetByCode(ctx context.Context, code string) (*Order, error)

	// GetByCodeAndPhone matches a tracking lookup: code plus the WhatsApp
	// number the order was placed with.
	GetByCodeAndPhone(ctx context.Context, code, whatsapp string) (*Order, error)

	// GetByRemoteID finds the order linked to a Culqi order ID.
	GetByRemoteID(ctx context.Context, remoteID string) (*Order, error)

	// ListByUser returns a customer's orders, newest first, with items.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// List returns orders for the operator panel, optionally filtered.
	List(ctx context.Context, status Status, paymentStatus PaymentStatus) ([]*Order, error)

	// UpdateStatus sets the fulfillment status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// SetPaymentStatus is the operator override; moving to paid stamps paid_at
	// if it is not already set.
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, at time.Time) error

	// AttachReceipt records an uploaded receipt image and moves the order to
	// pending_review unless it is already paid.
	AttachReceipt(ctx context.Context, id uuid.UUID, image string, at time.Time) error

	// LinkRemoteOrder stores the Culqi order ID assigned to this order. At most
	// one order may hold a given remote ID.
	LinkRemoteOrder(ctx context.Context, id uuid.UUID, remoteID string) error

	// ApplyRemoteEvent refreshes the gateway mirror fields and, when paid is
	// set, promotes payment_status to paid. The whole change is one statement:
	// paid is sticky and paid_at is stamped only on the actual transition, so
	// replayed or out-of-order events cannot regress the order.
	ApplyRemoteEvent(ctx context.Context, id uuid.UUID, state string, eventAt time.Time, paid bool) error
}
