package testutil

import (
	"context"

	"github.com/tiffinly/tiffinly/internal/domain/coupon"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// InMemoryCouponStore implements coupon.Repository
type InMemoryCouponStore struct {
	*InMemoryStore[*coupon.Coupon]
}

// NewInMemoryCouponStore creates a new in-memory coupon store
func NewInMemoryCouponStore() *InMemoryCouponStore {
	return &InMemoryCouponStore{
		InMemoryStore: NewInMemoryStore[*coupon.Coupon](),
	}
}

func copyCoupon(c *coupon.Coupon) *coupon.Coupon {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

func (s *InMemoryCouponStore) Create(ctx context.Context, c *coupon.Coupon) error {
	if c == nil {
		return ierr.NewError("coupon cannot be nil").
			WithHint("Coupon cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, c.ID, copyCoupon(c)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create coupon").
			WithReportableDetails(map[string]interface{}{"id": c.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemoryCouponStore) Get(ctx context.Context, id string) (*coupon.Coupon, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("coupon not found").
			WithHint("Coupon not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyCoupon(c), nil
}

func (s *InMemoryCouponStore) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	coupons := s.InMemoryStore.List(ctx,
		func(c *coupon.Coupon) bool {
			return c.Code == code && c.Status == types.StatusPublished
		},
		nil,
	)
	if len(coupons) == 0 {
		return nil, ierr.NewError("coupon not found").
			WithHint("Coupon not found").
			WithReportableDetails(map[string]interface{}{"code": code}).
			Mark(ierr.ErrNotFound)
	}
	return copyCoupon(coupons[0]), nil
}
