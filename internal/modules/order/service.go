package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dcamacho/danishop-backend/internal/modules/catalog"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrCartEmpty is returned when checkout finds nothing to order, either
// because the cart was empty or every line resolved to a vanished product.
var ErrCartEmpty = errors.New("cart is empty")

// CartSource is the slice of the session cart checkout needs.
type CartSource interface {
	Get(ctx context.Context, sessionID string) (map[string]int, error)
	Clear(ctx context.Context, sessionID string) error
}

// Catalog resolves cart product IDs to live catalog entries.
type Catalog interface {
	ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error)
}

// Service defines order business logic.
type Service interface {
	// Checkout materializes the caller's cart into an order. Quantities are
	// re-clamped against current stock, the total is computed from the
	// recomputed subtotals only, and the cart is cleared only after the order
	// is durably saved.
	Checkout(ctx context.Context, sessionID string, userID *uuid.UUID, req CheckoutRequest) (*Order, error)

	// GetByCode fetches an order by its human-facing code. Access control is
	// the handler's job via CanView.
	GetByCode(ctx context.Context, code string) (*Order, error)

	// Track matches a guest lookup by code + WhatsApp number.
	Track(ctx context.Context, req TrackRequest) (*Order, error)

	// ListMine returns the authenticated customer's orders.
	ListMine(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// UploadReceipt stores the image and moves payment to pending_review.
	UploadReceipt(ctx context.Context, o *Order, filename string, image io.Reader) (*Order, error)

	// Operator actions.
	ListAll(ctx context.Context, status Status, paymentStatus PaymentStatus) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error)
}

var validate = validator.New()

type service struct {
	repo     Repository
	cart     CartSource
	catalog  Catalog
	receipts *Receipts
	logger   *zap.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, cart CartSource, cat Catalog, receipts *Receipts, logger *zap.Logger) Service {
	return &service{repo: repo, cart: cart, catalog: cat, receipts: receipts, logger: logger}
}

// validTransitions is the fulfillment state machine. Cancellation is allowed
// until the order leaves the kitchen; delivered and cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusNew:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusOnTheWay, StatusCancelled},
	StatusOnTheWay:  {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

func (s *service) Checkout(ctx context.Context, sessionID string, userID *uuid.UUID, req CheckoutRequest) (*Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid checkout form: %w", err)
	}

	stored, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, ErrCartEmpty
	}

	ids := make([]uuid.UUID, 0, len(stored))
	for pidStr := range stored {
		if pid, err := uuid.Parse(pidStr); err == nil {
			ids = append(ids, pid)
		}
	}
	products, err := s.catalog.ListActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Re-clamp every line to the stock available right now; the cart may have
	// been sitting around while stock shrank or products were deactivated.
	var items []*OrderItem
	total := decimal.Zero
	for _, p := range products {
		qty := stored[p.ID.String()]
		if qty > p.Stock {
			qty = p.Stock
		}
		if qty <= 0 {
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		items = append(items, &OrderItem{
			ID:          uuid.New(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    qty,
			UnitPrice:   p.Price,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	o := &Order{
		ID:            uuid.New(),
		Code:          NewCode(),
		UserID:        userID,
		FullName:      req.FullName,
		Whatsapp:      req.Whatsapp,
		Address:       req.Address,
		Reference:     req.Reference,
		Notes:         req.Notes,
		Total:         total,
		Status:        StatusNew,
		PaymentStatus: PaymentUnpaid,
		Items:         items,
	}
	for _, item := range items {
		item.OrderID = o.ID
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// Only now that the order is durable does the cart go away. A failed clear
	// leaves a stale cart, which is annoying but harmless.
	if err := s.cart.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("cart clear failed after checkout",
			zap.String("order_code", o.Code), zap.Error(err))
	}

	s.logger.Info("order placed",
		zap.String("order_code", o.Code),
		zap.String("total", o.Total.StringFixed(2)),
		zap.Int("items", len(o.Items)),
		zap.Bool("guest", userID == nil))

	return s.repo.GetByID(ctx, o.ID)
}

func (s *service) GetByCode(ctx context.Context, code string) (*Order, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) Track(ctx context.Context, req TrackRequest) (*Order, error) {
	code := NormalizeCode(req.Code)
	if code == "" || req.Whatsapp == "" {
		return nil, fmt.Errorf("code and whatsapp are required")
	}
	return s.repo.GetByCodeAndPhone(ctx, code, req.Whatsapp)
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UploadReceipt(ctx context.Context, o *Order, filename string, image io.Reader) (*Order, error) {
	path, err := s.receipts.Save(o.Code, filename, image)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AttachReceipt(ctx, o.ID, path, time.Now()); err != nil {
		return nil, err
	}
	s.logger.Info("receipt uploaded", zap.String("order_code", o.Code))
	return s.repo.GetByID(ctx, o.ID)
}

func (s *service) ListAll(ctx context.Context, status Status, paymentStatus PaymentStatus) ([]*Order, error) {
	return s.repo.List(ctx, status, paymentStatus)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	o, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	valid := false
	for _, next := range validTransitions[o.Status] {
		if next == status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("cannot transition order from %s to %s", o.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, oid, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

func (s *service) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	switch status {
	case PaymentUnpaid, PaymentPendingReview, PaymentPaid:
	default:
		return nil, fmt.Errorf("invalid payment status %q", status)
	}
	if _, err := s.repo.GetByID(ctx, oid); err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if err := s.repo.SetPaymentStatus(ctx, oid, status, time.Now()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, oid)
}
