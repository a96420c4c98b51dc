package invoice

import (
	"context"
	"time"
)

// Repository defines persistence operations for invoices.
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, inv *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, inv *Invoice) error

	// GetByGroupAndCycleStart retrieves the invoice for a specific
	// (group, cycle_start), the renewal job's idempotency check.
	GetByGroupAndCycleStart(ctx context.Context, groupID string, cycleStart time.Time) (*Invoice, error)

	// ListPayable retrieves pending/failed invoices with attempts left,
	// oldest first, capped at limit.
	ListPayable(ctx context.Context, maxAttempts int, limit int) ([]*Invoice, error)

	// ListPaidWithoutOrders retrieves paid invoices whose cycle span has
	// not yet been expanded into delivery orders.
	ListPaidWithoutOrders(ctx context.Context, limit int) ([]*Invoice, error)

	// GetLatestPaidByGroup retrieves the most recent paid invoice for a
	// group, by cycle start.
	GetLatestPaidByGroup(ctx context.Context, groupID string) (*Invoice, error)
}
