package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/tiffinly/tiffinly/internal/domain/order"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// InMemoryOrderStore implements order.Repository
type InMemoryOrderStore struct {
	*InMemoryStore[*order.Order]
}

// NewInMemoryOrderStore creates a new in-memory order store
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		InMemoryStore: NewInMemoryStore[*order.Order](),
	}
}

func copyOrder(o *order.Order) *order.Order {
	if o == nil {
		return nil
	}
	copied := *o
	return &copied
}

func (s *InMemoryOrderStore) CreateIgnoreDuplicate(ctx context.Context, o *order.Order) (bool, error) {
	if o == nil {
		return false, ierr.NewError("order cannot be nil").
			WithHint("Order cannot be nil").
			Mark(ierr.ErrValidation)
	}
	// mirror the unique index on (subscription_id, service_date, slot)
	dupes := s.InMemoryStore.List(ctx,
		func(existing *order.Order) bool {
			return existing.SubscriptionID == o.SubscriptionID &&
				existing.Slot == o.Slot &&
				types.SameDate(existing.ServiceDate, o.ServiceDate)
		},
		nil,
	)
	if len(dupes) > 0 {
		return false, nil
	}
	if err := s.InMemoryStore.Create(ctx, o.ID, copyOrder(o)); err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to create order").
			WithReportableDetails(map[string]interface{}{"id": o.ID}).
			Mark(ierr.ErrDatabase)
	}
	return true, nil
}

func (s *InMemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("order not found").
			WithHint("Order not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyOrder(o), nil
}

func (s *InMemoryOrderStore) Update(ctx context.Context, o *order.Order) error {
	if err := s.InMemoryStore.Update(ctx, o.ID, copyOrder(o)); err != nil {
		return ierr.NewError("order not found").
			WithHint("Order not found").
			WithReportableDetails(map[string]interface{}{"id": o.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemoryOrderStore) GetScheduled(ctx context.Context, subscriptionID string, serviceDate time.Time, slot types.MealSlot) (*order.Order, error) {
	orders := s.InMemoryStore.List(ctx,
		func(o *order.Order) bool {
			return o.SubscriptionID == subscriptionID &&
				o.Slot == slot &&
				o.OrderStatus == types.OrderStatusScheduled &&
				types.SameDate(o.ServiceDate, serviceDate)
		},
		nil,
	)
	if len(orders) == 0 {
		return nil, ierr.NewError("order not found").
			WithHint("No scheduled order for this date and slot").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
				"service_date":    serviceDate,
				"slot":            slot,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyOrder(orders[0]), nil
}

func (s *InMemoryOrderStore) CountByInvoice(ctx context.Context, invoiceID string) (int, error) {
	orders := s.InMemoryStore.List(ctx,
		func(o *order.Order) bool { return o.InvoiceID == invoiceID },
		nil,
	)
	return len(orders), nil
}

func (s *InMemoryOrderStore) ListScheduledByVendorDate(ctx context.Context, vendorID string, serviceDate time.Time, slot types.MealSlot) ([]*order.Order, error) {
	orders := s.InMemoryStore.List(ctx,
		func(o *order.Order) bool {
			if o.VendorID != vendorID || o.OrderStatus != types.OrderStatusScheduled {
				return false
			}
			if !types.SameDate(o.ServiceDate, serviceDate) {
				return false
			}
			return slot == "" || o.Slot == slot
		},
		func(a, b *order.Order) bool { return a.ID < b.ID },
	)
	return lo.Map(orders, func(o *order.Order, _ int) *order.Order {
		return copyOrder(o)
	}), nil
}

func (s *InMemoryOrderStore) CountRemainingScheduled(ctx context.Context, subscriptionID string, after time.Time) (int, error) {
	orders := s.InMemoryStore.List(ctx,
		func(o *order.Order) bool {
			return o.SubscriptionID == subscriptionID &&
				o.OrderStatus == types.OrderStatusScheduled &&
				types.DateOnly(o.ServiceDate).After(types.DateOnly(after))
		},
		nil,
	)
	return len(orders), nil
}

func (s *InMemoryOrderStore) CancelScheduledAfter(ctx context.Context, subscriptionID string, after time.Time) (int, error) {
	orders := s.InMemoryStore.List(ctx,
		func(o *order.Order) bool {
			return o.SubscriptionID == subscriptionID &&
				o.OrderStatus == types.OrderStatusScheduled &&
				types.DateOnly(o.ServiceDate).After(types.DateOnly(after))
		},
		nil,
	)
	for _, o := range orders {
		updated := copyOrder(o)
		updated.OrderStatus = types.OrderStatusCancelled
		if err := s.InMemoryStore.Update(ctx, o.ID, updated); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to cancel scheduled order").
				Mark(ierr.ErrDatabase)
		}
	}
	return len(orders), nil
}
