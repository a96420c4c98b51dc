package credit

import (
	"context"
	"time"
)

// Repository defines persistence operations for credits.
type Repository interface {
	// Create creates a new credit
	Create(ctx context.Context, c *Credit) error

	// Get retrieves a credit by ID
	Get(ctx context.Context, id string) (*Credit, error)

	// ListAvailableBySubscription retrieves unexpired, unconsumed meal
	// credits for a subscription ordered oldest-expiry-first, which is
	// the consumption order.
	ListAvailableBySubscription(ctx context.Context, subscriptionID string, asOf time.Time) ([]*Credit, error)

	// MarkConsumed atomically marks the given credits consumed by an
	// invoice. Returns an error if any credit is no longer active, so a
	// concurrent consumer cannot double-spend.
	MarkConsumed(ctx context.Context, ids []string, invoiceID string, at time.Time) error

	// ExpireDue flips active credits whose expiry has passed and
	// returns how many were expired.
	ExpireDue(ctx context.Context, asOf time.Time) (int, error)
}
