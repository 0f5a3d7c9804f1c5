package address

import (
	"time"

	"github.com/google/uuid"
)

// Address is a saved delivery profile belonging to a customer account. It
// carries the same fields the checkout form asks for, so a saved profile can
// prefill checkout one to one.
type Address struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Label     string    `json:"label"`
	FullName  string    `json:"full_name"`
	Whatsapp  string    `json:"whatsapp"`
	Address   string    `json:"address"`
	Reference string    `json:"reference,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveAddressRequest is the create/update payload.
type SaveAddressRequest struct {
	Label     string `json:"label" validate:"required,max=60"`
	FullName  string `json:"full_name" validate:"required,max=120"`
	Whatsapp  string `json:"whatsapp" validate:"required,max=30"`
	Address   string `json:"address" validate:"required,max=180"`
	Reference string `json:"reference" validate:"max=180"`
	Notes     string `json:"notes"`
	IsDefault bool   `json:"is_default"`
}
