package invoice

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tiffinly/tiffinly/internal/types"
)

// Invoice bills one subscription group for one cycle. At most one
// non-deleted invoice exists per (group_id, cycle_start); the renewal
// job checks before creating and the datastore enforces it with a
// partial unique index.
type Invoice struct {
	ID              string              `json:"id"`
	GroupID         string              `json:"group_id"`
	CustomerID      string              `json:"customer_id"`
	VendorID        string              `json:"vendor_id"`
	CycleStart      time.Time           `json:"cycle_start"`
	CycleEnd        time.Time           `json:"cycle_end"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	Amount          decimal.Decimal     `json:"amount"`
	Currency        string              `json:"currency"`
	InvStatus       types.InvoiceStatus `json:"invoice_status"`
	PaymentAttempts int                 `json:"payment_attempts"`
	CreditsApplied  int                 `json:"credits_applied"`
	RazorpayOrderID *string             `json:"razorpay_order_id,omitempty"`
	PaymentID       *string             `json:"payment_id,omitempty"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	// OrdersGeneratedAt is set once the order generation job has
	// expanded this invoice's cycle span into delivery orders.
	OrdersGeneratedAt *time.Time     `json:"orders_generated_at,omitempty"`
	Metadata          types.Metadata `json:"metadata,omitempty"`
	types.BaseModel
}

// IsPaid returns true once the invoice has been settled.
func (i *Invoice) IsPaid() bool {
	return i.InvStatus == types.InvoiceStatusPaid
}

// IsPayable returns true while the invoice may still be charged.
func (i *Invoice) IsPayable(maxAttempts int) bool {
	if i.InvStatus != types.InvoiceStatusPending && i.InvStatus != types.InvoiceStatusFailed {
		return false
	}
	return i.PaymentAttempts < maxAttempts
}

// HasGeneratedOrders returns true once delivery orders exist for the cycle.
func (i *Invoice) HasGeneratedOrders() bool {
	return i.OrdersGeneratedAt != nil
}
