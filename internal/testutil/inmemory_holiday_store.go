package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/tiffinly/tiffinly/internal/domain/holiday"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// InMemoryHolidayStore implements holiday.Repository
type InMemoryHolidayStore struct {
	*InMemoryStore[*holiday.VendorHoliday]
}

// NewInMemoryHolidayStore creates a new in-memory vendor holiday store
func NewInMemoryHolidayStore() *InMemoryHolidayStore {
	return &InMemoryHolidayStore{
		InMemoryStore: NewInMemoryStore[*holiday.VendorHoliday](),
	}
}

func copyHoliday(h *holiday.VendorHoliday) *holiday.VendorHoliday {
	if h == nil {
		return nil
	}
	copied := *h
	return &copied
}

func (s *InMemoryHolidayStore) Create(ctx context.Context, h *holiday.VendorHoliday) error {
	if h == nil {
		return ierr.NewError("vendor holiday cannot be nil").
			WithHint("Vendor holiday cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, h.ID, copyHoliday(h)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create vendor holiday").
			WithReportableDetails(map[string]interface{}{"id": h.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemoryHolidayStore) ListByVendorBetween(ctx context.Context, vendorID string, from, to time.Time) ([]*holiday.VendorHoliday, error) {
	fromDay, toDay := types.DateOnly(from), types.DateOnly(to)
	holidays := s.InMemoryStore.List(ctx,
		func(h *holiday.VendorHoliday) bool {
			if h.VendorID != vendorID || h.Status != types.StatusPublished {
				return false
			}
			day := types.DateOnly(h.Date)
			return !day.Before(fromDay) && !day.After(toDay)
		},
		func(a, b *holiday.VendorHoliday) bool { return a.Date.Before(b.Date) },
	)
	return lo.Map(holidays, func(h *holiday.VendorHoliday, _ int) *holiday.VendorHoliday {
		return copyHoliday(h)
	}), nil
}
