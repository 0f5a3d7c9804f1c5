package payment

import "encoding/json"

// EventOrderStatusChanged is the only webhook event type the storefront acts
// on. Everything else is acknowledged and dropped.
const EventOrderStatusChanged = "order.status.changed"

// statePaid is the remote order state that marks a completed payment.
const statePaid = "paid"

// CreateOrderRequest is the payload sent to the gateway to open an order.
// Amounts are integer minor units (centimos for PEN).
type CreateOrderRequest struct {
	Amount        int64         `json:"amount"`
	CurrencyCode  string        `json:"currency_code"`
	Description   string        `json:"description"`
	OrderNumber   string        `json:"order_number"`
	ClientDetails ClientDetails `json:"client_details"`
	// ExpirationDate is a unix timestamp after which the remote order lapses.
	ExpirationDate int64 `json:"expiration_date"`
}

// ClientDetails identifies the payer to the gateway.
type ClientDetails struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// RemoteOrder is the gateway's representation of a payment order.
type RemoteOrder struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
	OrderNumber  string `json:"order_number"`
	CreationDate int64  `json:"creation_date"`
}

// WebhookEnvelope is the outer shape of a gateway notification. The data
// field arrives either as a JSON object or as a string containing JSON, so
// it is kept raw and decoded in two steps.
type WebhookEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WebhookOrder is the order snapshot inside an order.status.changed event.
type WebhookOrder struct {
	ID          string `json:"id"`
	State       string `json:"state"`
	OrderNumber string `json:"order_number"`
	Amount      int64  `json:"amount"`
}

// decodeData handles both encodings of the data field.
func (e *WebhookEnvelope) decodeData() (*WebhookOrder, error) {
	raw := e.Data
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = []byte(asString)
	}
	var o WebhookOrder
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
