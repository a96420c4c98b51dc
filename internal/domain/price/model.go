package price

import (
	"github.com/shopspring/decimal"
	"github.com/tiffinly/tiffinly/internal/types"
)

// VendorPrice is a vendor's per-meal price for one slot. Pricing fails
// with a price-not-found error when a vendor has no enabled price for a
// slot it is being billed for.
type VendorPrice struct {
	ID           string          `json:"id"`
	VendorID     string          `json:"vendor_id"`
	Slot         types.MealSlot  `json:"slot"`
	PricePerMeal decimal.Decimal `json:"price_per_meal"`
	Currency     string          `json:"currency"`
	Enabled      bool            `json:"enabled"`
	types.BaseModel
}
