package price

import (
	"context"

	"github.com/tiffinly/tiffinly/internal/types"
)

// Repository defines persistence operations for vendor prices.
type Repository interface {
	// Create creates a new vendor price
	Create(ctx context.Context, p *VendorPrice) error

	// Update updates an existing vendor price
	Update(ctx context.Context, p *VendorPrice) error

	// GetEnabled retrieves the enabled price for a (vendor, slot).
	// Returns a price-not-found error when none exists.
	GetEnabled(ctx context.Context, vendorID string, slot types.MealSlot) (*VendorPrice, error)

	// ListByVendor retrieves all prices for a vendor
	ListByVendor(ctx context.Context, vendorID string) ([]*VendorPrice, error)
}
