package holiday

import (
	"context"
	"time"
)

// Repository defines persistence operations for vendor holidays.
type Repository interface {
	// Create creates a new vendor holiday
	Create(ctx context.Context, h *VendorHoliday) error

	// ListByVendorBetween retrieves a vendor's holidays within
	// [from, to] inclusive.
	ListByVendorBetween(ctx context.Context, vendorID string, from, to time.Time) ([]*VendorHoliday, error)
}
