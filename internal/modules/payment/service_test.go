package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/dcamacho/danishop-backend/internal/modules/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrders struct {
	orders  map[uuid.UUID]*order.Order
	linkErr error
}

func newFakeOrders(orders ...*order.Order) *fakeOrders {
	f := &fakeOrders{orders: make(map[uuid.UUID]*order.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) GetByCode(_ context.Context, code string) (*order.Order, error) {
	code = order.NormalizeCode(code)
	for _, o := range f.orders {
		if o.Code == code {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrders) GetByRemoteID(_ context.Context, remoteID string) (*order.Order, error) {
	for _, o := range f.orders {
		if o.CulqiOrderID == remoteID {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrders) LinkRemoteOrder(_ context.Context, id uuid.UUID, remoteID string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.orders[id].CulqiOrderID = remoteID
	return nil
}

func (f *fakeOrders) ApplyRemoteEvent(_ context.Context, id uuid.UUID, state string, eventAt time.Time, paid bool) error {
	o := f.orders[id]
	o.CulqiLastState = state
	o.CulqiLastEventAt = &eventAt
	if paid && o.PaymentStatus != order.PaymentPaid {
		o.PaymentStatus = order.PaymentPaid
		o.PaidAt = &eventAt
	}
	return nil
}

type fakeGateway struct {
	requests []CreateOrderRequest
	remote   *RemoteOrder
	err      error
}

func (f *fakeGateway) CreateOrder(_ context.Context, req CreateOrderRequest) (*RemoteOrder, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.remote, nil
}

func guestOrder(code, fullName, total string) *order.Order {
	return &order.Order{
		ID:            uuid.New(),
		Code:          code,
		FullName:      fullName,
		Whatsapp:      "51999888777",
		Total:         decimal.RequireFromString(total),
		Status:        order.StatusNew,
		PaymentStatus: order.PaymentUnpaid,
	}
}

func grantedViewer(codes ...string) order.Viewer {
	return order.Viewer{Codes: codes}
}

func TestCreateRemoteOrder(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García Torres", "62.00")
	orders := newFakeOrders(o)
	gw := &fakeGateway{remote: &RemoteOrder{ID: "ord_live_1", State: "created", Amount: 6200}}
	svc := NewService(orders, gw, "PEN", zap.NewNop())

	before := time.Now()
	remote, err := svc.CreateRemoteOrder(context.Background(), "dani-aaaaaa", grantedViewer("DANI-AAAAAA"))
	require.NoError(t, err)
	assert.Equal(t, "ord_live_1", remote.ID)
	assert.Equal(t, "ord_live_1", o.CulqiOrderID)

	require.Len(t, gw.requests, 1)
	req := gw.requests[0]
	assert.Equal(t, int64(6200), req.Amount)
	assert.Equal(t, "PEN", req.CurrencyCode)
	assert.Equal(t, "DANI-AAAAAA", req.OrderNumber)
	assert.Equal(t, "María", req.ClientDetails.FirstName)
	assert.Equal(t, "García Torres", req.ClientDetails.LastName)
	assert.Equal(t, "51999888777", req.ClientDetails.PhoneNumber)
	assert.NotEmpty(t, req.ClientDetails.Email)

	// The remote order lapses about an hour out.
	expiry := time.Unix(req.ExpirationDate, 0)
	assert.WithinDuration(t, before.Add(time.Hour), expiry, time.Minute)
}

func TestCreateRemoteOrderSingleWordName(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "Madonna", "10.00")
	gw := &fakeGateway{remote: &RemoteOrder{ID: "ord_1"}}
	svc := NewService(newFakeOrders(o), gw, "PEN", zap.NewNop())

	_, err := svc.CreateRemoteOrder(context.Background(), o.Code, grantedViewer(o.Code))
	require.NoError(t, err)
	require.Len(t, gw.requests, 1)
	assert.Equal(t, "Madonna", gw.requests[0].ClientDetails.FirstName)
	assert.Equal(t, "Madonna", gw.requests[0].ClientDetails.LastName)
}

func TestCreateRemoteOrderForbidden(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	gw := &fakeGateway{remote: &RemoteOrder{ID: "ord_1"}}
	svc := NewService(newFakeOrders(o), gw, "PEN", zap.NewNop())

	_, err := svc.CreateRemoteOrder(context.Background(), o.Code, grantedViewer("DANI-OTHERS"))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, gw.requests)
}

func TestCreateRemoteOrderAlreadyPaid(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	o.PaymentStatus = order.PaymentPaid
	gw := &fakeGateway{remote: &RemoteOrder{ID: "ord_1"}}
	svc := NewService(newFakeOrders(o), gw, "PEN", zap.NewNop())

	_, err := svc.CreateRemoteOrder(context.Background(), o.Code, grantedViewer(o.Code))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already paid")
	assert.Empty(t, gw.requests)
}

func TestCreateRemoteOrderReusesExistingLink(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	o.CulqiOrderID = "ord_existing"
	gw := &fakeGateway{remote: &RemoteOrder{ID: "ord_new"}}
	svc := NewService(newFakeOrders(o), gw, "PEN", zap.NewNop())

	remote, err := svc.CreateRemoteOrder(context.Background(), o.Code, grantedViewer(o.Code))
	require.NoError(t, err)
	assert.Equal(t, "ord_existing", remote.ID)
	assert.Empty(t, gw.requests)
}

func TestCreateRemoteOrderGatewayFailureLeavesOrderUntouched(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	gw := &fakeGateway{err: assert.AnError}
	svc := NewService(newFakeOrders(o), gw, "PEN", zap.NewNop())

	_, err := svc.CreateRemoteOrder(context.Background(), o.Code, grantedViewer(o.Code))
	require.Error(t, err)
	assert.Empty(t, o.CulqiOrderID)
	assert.Equal(t, order.PaymentUnpaid, o.PaymentStatus)
}

func webhookEvent(t *testing.T, eventType string, data interface{}) WebhookEnvelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return WebhookEnvelope{Type: eventType, Data: raw}
}

func TestWebhookMarksOrderPaid(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	o.CulqiOrderID = "ord_1"
	orders := newFakeOrders(o)
	svc := NewService(orders, &fakeGateway{}, "PEN", zap.NewNop())

	env := webhookEvent(t, EventOrderStatusChanged, WebhookOrder{ID: "ord_1", State: "paid", OrderNumber: o.Code})
	require.NoError(t, svc.HandleWebhook(context.Background(), env))

	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "paid", o.CulqiLastState)
	require.NotNil(t, o.PaidAt)
	require.NotNil(t, o.CulqiLastEventAt)
}

func TestWebhookPaidIsIdempotent(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	o.CulqiOrderID = "ord_1"
	svc := NewService(newFakeOrders(o), &fakeGateway{}, "PEN", zap.NewNop())
	ctx := context.Background()

	env := webhookEvent(t, EventOrderStatusChanged, WebhookOrder{ID: "ord_1", State: "paid"})
	require.NoError(t, svc.HandleWebhook(ctx, env))
	firstPaidAt := *o.PaidAt
	firstEventAt := *o.CulqiLastEventAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.HandleWebhook(ctx, env))

	// Redelivery refreshes the mirror but never restamps the payment.
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, firstPaidAt, *o.PaidAt)
	assert.True(t, o.CulqiLastEventAt.After(firstEventAt))
}

func TestWebhookLateStateNeverDowngradesPaid(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	o.CulqiOrderID = "ord_1"
	svc := NewService(newFakeOrders(o), &fakeGateway{}, "PEN", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.HandleWebhook(ctx,
		webhookEvent(t, EventOrderStatusChanged, WebhookOrder{ID: "ord_1", State: "paid"})))
	require.NoError(t, svc.HandleWebhook(ctx,
		webhookEvent(t, EventOrderStatusChanged, WebhookOrder{ID: "ord_1", State: "expired"})))

	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "expired", o.CulqiLastState)
}

func TestWebhookStringEncodedData(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	o.CulqiOrderID = "ord_1"
	svc := NewService(newFakeOrders(o), &fakeGateway{}, "PEN", zap.NewNop())

	// Some deliveries double-encode the data field as a JSON string.
	inner, err := json.Marshal(WebhookOrder{ID: "ord_1", State: "paid"})
	require.NoError(t, err)
	env := webhookEvent(t, EventOrderStatusChanged, string(inner))

	require.NoError(t, svc.HandleWebhook(context.Background(), env))
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
}

func TestWebhookFallsBackToOrderNumber(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	svc := NewService(newFakeOrders(o), &fakeGateway{}, "PEN", zap.NewNop())

	// Not linked yet, so the remote ID finds nothing and the code matches.
	env := webhookEvent(t, EventOrderStatusChanged, WebhookOrder{ID: "ord_unseen", State: "paid", OrderNumber: "DANI-AAAAAA"})
	require.NoError(t, svc.HandleWebhook(context.Background(), env))
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
}

func TestWebhookUnknownOrderIsNoop(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	svc := NewService(newFakeOrders(o), &fakeGateway{}, "PEN", zap.NewNop())

	env := webhookEvent(t, EventOrderStatusChanged, WebhookOrder{ID: "ord_unseen", State: "paid", OrderNumber: "DANI-GHOSTS"})
	require.NoError(t, svc.HandleWebhook(context.Background(), env))
	assert.Equal(t, order.PaymentUnpaid, o.PaymentStatus)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	o := guestOrder("DANI-AAAAAA", "María García", "10.00")
	o.CulqiOrderID = "ord_1"
	svc := NewService(newFakeOrders(o), &fakeGateway{}, "PEN", zap.NewNop())

	env := webhookEvent(t, "order.deleted", WebhookOrder{ID: "ord_1", State: "deleted"})
	require.NoError(t, svc.HandleWebhook(context.Background(), env))
	assert.Equal(t, order.PaymentUnpaid, o.PaymentStatus)
	assert.Empty(t, o.CulqiLastState)
}

func TestWebhookBadDataPayload(t *testing.T) {
	svc := NewService(newFakeOrders(), &fakeGateway{}, "PEN", zap.NewNop())

	env := WebhookEnvelope{Type: EventOrderStatusChanged, Data: json.RawMessage(`42`)}
	err := svc.HandleWebhook(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
