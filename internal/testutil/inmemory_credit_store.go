package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/tiffinly/tiffinly/internal/domain/credit"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// InMemoryCreditStore implements credit.Repository
type InMemoryCreditStore struct {
	*InMemoryStore[*credit.Credit]
}

// NewInMemoryCreditStore creates a new in-memory credit store
func NewInMemoryCreditStore() *InMemoryCreditStore {
	return &InMemoryCreditStore{
		InMemoryStore: NewInMemoryStore[*credit.Credit](),
	}
}

func copyCredit(c *credit.Credit) *credit.Credit {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

func (s *InMemoryCreditStore) Create(ctx context.Context, c *credit.Credit) error {
	if c == nil {
		return ierr.NewError("credit cannot be nil").
			WithHint("Credit cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, c.ID, copyCredit(c)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create credit").
			WithReportableDetails(map[string]interface{}{"id": c.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemoryCreditStore) Get(ctx context.Context, id string) (*credit.Credit, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("credit not found").
			WithHint("Credit not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyCredit(c), nil
}

func (s *InMemoryCreditStore) ListAvailableBySubscription(ctx context.Context, subscriptionID string, asOf time.Time) ([]*credit.Credit, error) {
	credits := s.InMemoryStore.List(ctx,
		func(c *credit.Credit) bool {
			return c.Status == types.StatusPublished &&
				c.Type == types.CreditTypeMeal &&
				c.SubscriptionID != nil && *c.SubscriptionID == subscriptionID &&
				c.IsAvailable(asOf)
		},
		func(a, b *credit.Credit) bool {
			// oldest expiry first; nil expiry sorts last
			switch {
			case a.ExpiresAt == nil && b.ExpiresAt == nil:
				return a.ID < b.ID
			case a.ExpiresAt == nil:
				return false
			case b.ExpiresAt == nil:
				return true
			case !a.ExpiresAt.Equal(*b.ExpiresAt):
				return a.ExpiresAt.Before(*b.ExpiresAt)
			default:
				return a.ID < b.ID
			}
		},
	)
	return lo.Map(credits, func(c *credit.Credit, _ int) *credit.Credit {
		return copyCredit(c)
	}), nil
}

func (s *InMemoryCreditStore) MarkConsumed(ctx context.Context, ids []string, invoiceID string, at time.Time) error {
	// verify all are still active before flipping any, mirroring the
	// guarded UPDATE in the datastore
	for _, id := range ids {
		c, err := s.InMemoryStore.Get(ctx, id)
		if err != nil || c.CreditStatus != types.CreditStatusActive {
			return ierr.NewError("credit no longer active").
				WithHint("One or more credits were already consumed or expired").
				WithReportableDetails(map[string]interface{}{"id": id}).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	for _, id := range ids {
		c, _ := s.InMemoryStore.Get(ctx, id)
		updated := copyCredit(c)
		updated.CreditStatus = types.CreditStatusConsumed
		updated.ConsumedAt = lo.ToPtr(at)
		updated.InvoiceID = lo.ToPtr(invoiceID)
		if err := s.InMemoryStore.Update(ctx, id, updated); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to mark credit consumed").
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func (s *InMemoryCreditStore) ExpireDue(ctx context.Context, asOf time.Time) (int, error) {
	due := s.InMemoryStore.List(ctx,
		func(c *credit.Credit) bool {
			return c.Status == types.StatusPublished && c.IsExpiredAsOf(asOf)
		},
		nil,
	)
	for _, c := range due {
		updated := copyCredit(c)
		updated.CreditStatus = types.CreditStatusExpired
		if err := s.InMemoryStore.Update(ctx, c.ID, updated); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to expire credit").
				Mark(ierr.ErrDatabase)
		}
	}
	return len(due), nil
}
