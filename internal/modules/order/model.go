package order

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the fulfillment lifecycle of an order.
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusOnTheWay  Status = "on_the_way"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus tracks how far along payment is, independently of fulfillment.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPendingReview PaymentStatus = "pending_review"
	PaymentPaid          PaymentStatus = "paid"
)

// Order is a placed order. Total is computed at checkout from the item
// subtotals and never recomputed afterward. The Culqi* fields mirror the last
// known state of the remote gateway order; they are not authoritative,
// PaymentStatus is.
type Order struct {
	ID     uuid.UUID  `json:"id"`
	Code   string     `json:"code"`
	UserID *uuid.UUID `json:"user_id,omitempty"` // nil for guest orders

	FullName string `json:"full_name"`
	Whatsapp string `json:"whatsapp"`

	Address   string `json:"address,omitempty"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`

	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`

	ReceiptImage      string     `json:"receipt_image,omitempty"`
	ReceiptUploadedAt *time.Time `json:"receipt_uploaded_at,omitempty"`

	CulqiOrderID     string     `json:"culqi_order_id,omitempty"`
	CulqiLastState   string     `json:"culqi_last_state,omitempty"`
	CulqiLastEventAt *time.Time `json:"culqi_last_event_at,omitempty"`

	CreatedAt time.Time    `json:"created_at"`
	Items     []*OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order. Name, unit price and subtotal are
// snapshots taken at checkout; later product edits must not change them.
type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CheckoutRequest is the contact/delivery form submitted at checkout. It
// carries no price data on purpose.
type CheckoutRequest struct {
	FullName  string `json:"full_name" validate:"required,max=120"`
	Whatsapp  string `json:"whatsapp" validate:"required,max=30"`
	Address   string `json:"address" validate:"max=180"`
	Reference string `json:"reference" validate:"max=180"`
	Notes     string `json:"notes"`
}

// TrackRequest lets a guest look up an order with its code and the WhatsApp
// number it was placed with.
type TrackRequest struct {
	Code     string `json:"code"`
	Whatsapp string `json:"whatsapp"`
}

// NormalizeCode canonicalizes a customer-supplied order code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewCode generates a short human-facing order code like DANI-4F8A2C.
func NewCode() string {
	u := uuid.New()
	return "DANI-" + strings.ToUpper(hex.EncodeToString(u[:])[:6])
}
