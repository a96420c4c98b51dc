package credit

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tiffinly/tiffinly/internal/types"
)

// Credit is a pre-paid offset consumed against a future cycle's bill.
// Meal credits (skip/holiday) carry a meal count; monetary credits
// (auto-cancel conversions) carry an amount and belong to the customer
// rather than a specific subscription. A credit is consumed at most
// once; expired credits are flipped, never deleted.
type Credit struct {
	ID             string             `json:"id"`
	CustomerID     string             `json:"customer_id"`
	SubscriptionID *string            `json:"subscription_id,omitempty"`
	Type           types.CreditType   `json:"type"`
	Source         types.CreditSource `json:"source"`
	MealCount      int                `json:"meal_count"`
	Amount         decimal.Decimal    `json:"amount"`
	ExpiresAt      *time.Time         `json:"expires_at,omitempty"`
	CreditStatus   types.CreditStatus `json:"credit_status"`
	ConsumedAt     *time.Time         `json:"consumed_at,omitempty"`
	// InvoiceID references (does not own) the invoice that consumed
	// this credit.
	InvoiceID *string `json:"invoice_id,omitempty"`
	types.BaseModel
}

// IsAvailable reports whether the credit can still be applied as of the
// given time.
func (c *Credit) IsAvailable(asOf time.Time) bool {
	if c.CreditStatus != types.CreditStatusActive {
		return false
	}
	if c.ExpiresAt != nil && asOf.After(*c.ExpiresAt) {
		return false
	}
	return true
}

// IsExpiredAsOf reports whether an active credit has passed its expiry.
func (c *Credit) IsExpiredAsOf(asOf time.Time) bool {
	return c.CreditStatus == types.CreditStatusActive &&
		c.ExpiresAt != nil && asOf.After(*c.ExpiresAt)
}
