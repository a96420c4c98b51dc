package testutil

import (
	"context"

	"github.com/samber/lo"
	"github.com/tiffinly/tiffinly/internal/domain/price"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// InMemoryPriceStore implements price.Repository
type InMemoryPriceStore struct {
	*InMemoryStore[*price.VendorPrice]
}

// NewInMemoryPriceStore creates a new in-memory vendor price store
func NewInMemoryPriceStore() *InMemoryPriceStore {
	return &InMemoryPriceStore{
		InMemoryStore: NewInMemoryStore[*price.VendorPrice](),
	}
}

func copyVendorPrice(p *price.VendorPrice) *price.VendorPrice {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}

func (s *InMemoryPriceStore) Create(ctx context.Context, p *price.VendorPrice) error {
	if p == nil {
		return ierr.NewError("vendor price cannot be nil").
			WithHint("Vendor price cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, p.ID, copyVendorPrice(p)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create vendor price").
			WithReportableDetails(map[string]interface{}{"id": p.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemoryPriceStore) Update(ctx context.Context, p *price.VendorPrice) error {
	if err := s.InMemoryStore.Update(ctx, p.ID, copyVendorPrice(p)); err != nil {
		return ierr.NewError("vendor price not found").
			WithHint("Vendor price not found").
			WithReportableDetails(map[string]interface{}{"id": p.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryPriceStore) GetEnabled(ctx context.Context, vendorID string, slot types.MealSlot) (*price.VendorPrice, error) {
	prices := s.InMemoryStore.List(ctx,
		func(p *price.VendorPrice) bool {
			return p.VendorID == vendorID && p.Slot == slot &&
				p.Enabled && p.Status == types.StatusPublished
		},
		nil,
	)
	if len(prices) == 0 {
		return nil, ierr.NewError("no enabled price for slot").
			WithHint("Vendor has no enabled price for this slot").
			WithReportableDetails(map[string]interface{}{
				"vendor_id": vendorID,
				"slot":      slot,
			}).
			Mark(ierr.ErrPriceNotFound)
	}
	return copyVendorPrice(prices[0]), nil
}

func (s *InMemoryPriceStore) ListByVendor(ctx context.Context, vendorID string) ([]*price.VendorPrice, error) {
	prices := s.InMemoryStore.List(ctx,
		func(p *price.VendorPrice) bool {
			return p.VendorID == vendorID && p.Status == types.StatusPublished
		},
		func(a, b *price.VendorPrice) bool { return a.Slot < b.Slot },
	)
	return lo.Map(prices, func(p *price.VendorPrice, _ int) *price.VendorPrice {
		return copyVendorPrice(p)
	}), nil
}
