package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	copied := *inv
	copied.Metadata = lo.Assign(types.Metadata{}, inv.Metadata)
	return &copied
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	// mirror the partial unique index on (group_id, cycle_start)
	existing, err := s.GetByGroupAndCycleStart(ctx, inv.GroupID, inv.CycleStart)
	if err == nil && existing != nil {
		return ierr.NewError("invoice already exists for cycle").
			WithHint("An invoice for this group and cycle already exists").
			WithReportableDetails(map[string]interface{}{
				"group_id":    inv.GroupID,
				"cycle_start": inv.CycleStart,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	if err := s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]interface{}{"id": inv.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]interface{}{"id": inv.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryInvoiceStore) GetByGroupAndCycleStart(ctx context.Context, groupID string, cycleStart time.Time) (*invoice.Invoice, error) {
	invoices := s.InMemoryStore.List(ctx,
		func(inv *invoice.Invoice) bool {
			return inv.GroupID == groupID &&
				inv.Status == types.StatusPublished &&
				types.SameDate(inv.CycleStart, cycleStart)
		},
		nil,
	)
	if len(invoices) == 0 {
		return nil, ierr.NewError("invoice not found").
			WithHint("No invoice for this group and cycle").
			WithReportableDetails(map[string]interface{}{
				"group_id":    groupID,
				"cycle_start": cycleStart,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(invoices[0]), nil
}

func (s *InMemoryInvoiceStore) ListPayable(ctx context.Context, maxAttempts int, limit int) ([]*invoice.Invoice, error) {
	invoices := s.InMemoryStore.List(ctx,
		func(inv *invoice.Invoice) bool {
			return inv.Status == types.StatusPublished && inv.IsPayable(maxAttempts)
		},
		func(a, b *invoice.Invoice) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		},
	)
	if limit > 0 && len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func (s *InMemoryInvoiceStore) ListPaidWithoutOrders(ctx context.Context, limit int) ([]*invoice.Invoice, error) {
	invoices := s.InMemoryStore.List(ctx,
		func(inv *invoice.Invoice) bool {
			return inv.Status == types.StatusPublished &&
				inv.IsPaid() && !inv.HasGeneratedOrders()
		},
		func(a, b *invoice.Invoice) bool { return a.ID < b.ID },
	)
	if limit > 0 && len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func (s *InMemoryInvoiceStore) GetLatestPaidByGroup(ctx context.Context, groupID string) (*invoice.Invoice, error) {
	invoices := s.InMemoryStore.List(ctx,
		func(inv *invoice.Invoice) bool {
			return inv.GroupID == groupID &&
				inv.Status == types.StatusPublished && inv.IsPaid()
		},
		func(a, b *invoice.Invoice) bool { return a.CycleStart.After(b.CycleStart) },
	)
	if len(invoices) == 0 {
		return nil, ierr.NewError("no paid invoice for group").
			WithHint("No paid invoice for this group").
			WithReportableDetails(map[string]interface{}{"group_id": groupID}).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(invoices[0]), nil
}
