package cart

import (
	"github.com/dcamacho/danishop-backend/internal/modules/catalog"
	"github.com/shopspring/decimal"
)

// Line is one cart row resolved against the current catalog.
type Line struct {
	Product  *catalog.Product `json:"product"`
	Quantity int              `json:"quantity"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

// View is the rendered cart: lines priced at current catalog prices. Products
// that have gone inactive since they were added are dropped from the view but
// left in the stored session state.
type View struct {
	Items []*Line         `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// AddResult reports what happened to the line after an add.
type AddResult struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// Removed is set when the product turned out to have no stock at all, in
	// which case the line was dropped instead of incremented.
	Removed bool `json:"removed"`
}
