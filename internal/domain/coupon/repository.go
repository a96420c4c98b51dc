package coupon

import "context"

// Repository defines persistence operations for coupons.
type Repository interface {
	// Create creates a new coupon
	Create(ctx context.Context, c *Coupon) error

	// Get retrieves a coupon by ID
	Get(ctx context.Context, id string) (*Coupon, error)

	// GetByCode retrieves a coupon by its public code
	GetByCode(ctx context.Context, code string) (*Coupon, error)
}
