package order

import (
	"time"

	"github.com/tiffinly/tiffinly/internal/types"
)

// Order is one scheduled meal delivery: exactly one row may exist per
// (subscription, service_date, slot), enforced by a unique index.
// Orders are created by the order generation job from a paid invoice's
// cycle span.
type Order struct {
	ID             string            `json:"id"`
	SubscriptionID string            `json:"subscription_id"`
	GroupID        string            `json:"group_id"`
	InvoiceID      string            `json:"invoice_id"`
	CustomerID     string            `json:"customer_id"`
	VendorID       string            `json:"vendor_id"`
	ServiceDate    time.Time         `json:"service_date"`
	Slot           types.MealSlot    `json:"slot"`
	OrderStatus    types.OrderStatus `json:"order_status"`
	types.BaseModel
}

// IsTerminal reports whether the order can no longer change state.
func (o *Order) IsTerminal() bool {
	switch o.OrderStatus {
	case types.OrderStatusDelivered, types.OrderStatusSkipped, types.OrderStatusCancelled:
		return true
	}
	return false
}
