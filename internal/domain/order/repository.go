package order

import (
	"context"
	"time"

	"github.com/tiffinly/tiffinly/internal/types"
)

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateIgnoreDuplicate inserts an order unless one already exists
	// for the same (subscription, service_date, slot). Returns true if
	// a row was created. This is the order generation job's idempotency
	// seam.
	CreateIgnoreDuplicate(ctx context.Context, o *Order) (bool, error)

	// Get retrieves an order by ID
	Get(ctx context.Context, id string) (*Order, error)

	// Update updates an existing order
	Update(ctx context.Context, o *Order) error

	// GetScheduled retrieves the scheduled order for a (subscription,
	// date, slot) if one exists.
	GetScheduled(ctx context.Context, subscriptionID string, serviceDate time.Time, slot types.MealSlot) (*Order, error)

	// CountByInvoice returns how many orders exist for an invoice's span.
	CountByInvoice(ctx context.Context, invoiceID string) (int, error)

	// ListScheduledByVendorDate retrieves scheduled orders for a vendor
	// on a date, optionally restricted to one slot (empty = all slots).
	ListScheduledByVendorDate(ctx context.Context, vendorID string, serviceDate time.Time, slot types.MealSlot) ([]*Order, error)

	// CountRemainingScheduled counts a subscription's scheduled orders
	// with service dates strictly after the given date. Used by the
	// auto-cancel job to value unused prepaid balance.
	CountRemainingScheduled(ctx context.Context, subscriptionID string, after time.Time) (int, error)

	// CancelScheduledAfter flips a subscription's scheduled orders with
	// service dates strictly after the given date to cancelled and
	// returns how many were flipped. The returned count is what the
	// auto-cancel job converts to credit, so a re-run cannot convert
	// the same meals twice.
	CancelScheduledAfter(ctx context.Context, subscriptionID string, after time.Time) (int, error)
}
