package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dcamacho/danishop-backend/internal/modules/order"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrForbidden is returned when the caller has no right to pay for the order.
var ErrForbidden = errors.New("you are not authorized to pay for this order")

// remoteOrderTTL is how long a gateway order stays payable.
const remoteOrderTTL = time.Hour

// Orders is the slice of order persistence the payment flow needs.
type Orders interface {
	GetByCode(ctx context.Context, code string) (*order.Order, error)
	GetByRemoteID(ctx context.Context, remoteID string) (*order.Order, error)
	LinkRemoteOrder(ctx context.Context, id uuid.UUID, remoteID string) error
	ApplyRemoteEvent(ctx context.Context, id uuid.UUID, state string, eventAt time.Time, paid bool) error
}

// Service drives the gateway payment flow: opening remote orders and folding
// webhook notifications back into local payment state.
type Service interface {
	CreateRemoteOrder(ctx context.Context, code string, viewer order.Viewer) (*RemoteOrder, error)
	HandleWebhook(ctx context.Context, env WebhookEnvelope) error
}

type service struct {
	orders   Orders
	gateway  Gateway
	currency string
	logger   *zap.Logger
}

// NewService creates a new payment service.
func NewService(orders Orders, gateway Gateway, currency string, logger *zap.Logger) Service {
	return &service{orders: orders, gateway: gateway, currency: currency, logger: logger}
}

func (s *service) CreateRemoteOrder(ctx context.Context, code string, viewer order.Viewer) (*RemoteOrder, error) {
	o, err := s.orders.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	if !order.CanView(viewer, o) {
		return nil, ErrForbidden
	}
	if o.PaymentStatus == order.PaymentPaid {
		return nil, fmt.Errorf("order %s is already paid", o.Code)
	}

	// An order already linked to a gateway order reuses it instead of opening
	// a second one for the same purchase.
	if o.CulqiOrderID != "" {
		return &RemoteOrder{ID: o.CulqiOrderID, State: o.CulqiLastState, OrderNumber: o.Code}, nil
	}

	first, last := splitName(o.FullName)
	remote, err := s.gateway.CreateOrder(ctx, CreateOrderRequest{
		Amount:       o.Total.Shift(2).IntPart(),
		CurrencyCode: s.currency,
		Description:  "Pedido " + o.Code,
		OrderNumber:  o.Code,
		ClientDetails: ClientDetails{
			FirstName:   first,
			LastName:    last,
			Email:       placeholderEmail(o.Code),
			PhoneNumber: o.Whatsapp,
		},
		ExpirationDate: time.Now().Add(remoteOrderTTL).Unix(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.LinkRemoteOrder(ctx, o.ID, remote.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// A concurrent request linked first; hand back the winner.
			if linked, err := s.orders.GetByCode(ctx, o.Code); err == nil && linked.CulqiOrderID != "" {
				return &RemoteOrder{ID: linked.CulqiOrderID, State: linked.CulqiLastState, OrderNumber: o.Code}, nil
			}
		}
		return nil, fmt.Errorf("link remote order: %w", err)
	}

	s.logger.Info("culqi order created",
		zap.String("order_code", o.Code),
		zap.String("culqi_order_id", remote.ID),
		zap.Int64("amount", remote.Amount))
	return remote, nil
}

func (s *service) HandleWebhook(ctx context.Context, env WebhookEnvelope) error {
	if env.Type != EventOrderStatusChanged {
		s.logger.Debug("ignoring webhook event", zap.String("type", env.Type))
		return nil
	}

	data, err := env.decodeData()
	if err != nil {
		return fmt.Errorf("webhook data decode: %w", err)
	}

	o, err := s.orders.GetByRemoteID(ctx, data.ID)
	if err != nil && data.OrderNumber != "" {
		o, err = s.orders.GetByCode(ctx, data.OrderNumber)
	}
	if err != nil {
		// Not ours, or already purged. The gateway gets its 200 either way so
		// it stops retrying.
		s.logger.Info("webhook for unknown order",
			zap.String("culqi_order_id", data.ID),
			zap.String("order_number", data.OrderNumber))
		return nil
	}

	paid := data.State == statePaid
	if err := s.orders.ApplyRemoteEvent(ctx, o.ID, data.State, time.Now(), paid); err != nil {
		return fmt.Errorf("apply remote event: %w", err)
	}

	s.logger.Info("culqi order state synced",
		zap.String("order_code", o.Code),
		zap.String("state", data.State),
		zap.Bool("paid", paid))
	return nil
}

// splitName breaks a free-form full name into the first/last pair the gateway
// wants. Single-token names use the same token for both.
func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// placeholderEmail fills the gateway's required email field for checkouts
// that never collected one.
func placeholderEmail(code string) string {
	return strings.ToLower(order.NormalizeCode(code)) + "@pedidos.danishop.pe"
}
