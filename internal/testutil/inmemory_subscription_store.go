package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// InMemorySubscriptionGroupStore implements subscription.GroupRepository
type InMemorySubscriptionGroupStore struct {
	*InMemoryStore[*subscription.SubscriptionGroup]
}

// NewInMemorySubscriptionGroupStore creates a new in-memory subscription group store
func NewInMemorySubscriptionGroupStore() *InMemorySubscriptionGroupStore {
	return &InMemorySubscriptionGroupStore{
		InMemoryStore: NewInMemoryStore[*subscription.SubscriptionGroup](),
	}
}

func copyGroup(g *subscription.SubscriptionGroup) *subscription.SubscriptionGroup {
	if g == nil {
		return nil
	}
	copied := *g
	copied.Metadata = lo.Assign(types.Metadata{}, g.Metadata)
	return &copied
}

func (s *InMemorySubscriptionGroupStore) Create(ctx context.Context, g *subscription.SubscriptionGroup) error {
	if g == nil {
		return ierr.NewError("subscription group cannot be nil").
			WithHint("Subscription group cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, g.ID, copyGroup(g)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription group").
			WithReportableDetails(map[string]interface{}{"id": g.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemorySubscriptionGroupStore) Get(ctx context.Context, id string) (*subscription.SubscriptionGroup, error) {
	g, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription group not found").
			WithHint("Subscription group not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyGroup(g), nil
}

func (s *InMemorySubscriptionGroupStore) Update(ctx context.Context, g *subscription.SubscriptionGroup) error {
	if err := s.InMemoryStore.Update(ctx, g.ID, copyGroup(g)); err != nil {
		return ierr.NewError("subscription group not found").
			WithHint("Subscription group not found").
			WithReportableDetails(map[string]interface{}{"id": g.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemorySubscriptionGroupStore) ListDueForRenewal(ctx context.Context, runDate time.Time, afterID string, limit int) ([]*subscription.SubscriptionGroup, error) {
	groups := s.InMemoryStore.List(ctx,
		func(g *subscription.SubscriptionGroup) bool {
			return g.Status == types.StatusPublished &&
				types.SameDate(g.RenewalDate, runDate) &&
				g.ID > afterID
		},
		func(a, b *subscription.SubscriptionGroup) bool { return a.ID < b.ID },
	)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return lo.Map(groups, func(g *subscription.SubscriptionGroup, _ int) *subscription.SubscriptionGroup {
		return copyGroup(g)
	}), nil
}

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	copied := *sub
	copied.Weekdays = append(types.Weekdays{}, sub.Weekdays...)
	return &copied
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]interface{}{"id": sub.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub)); err != nil {
		return ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{"id": sub.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (s *InMemorySubscriptionStore) ListByGroup(ctx context.Context, groupID string) ([]*subscription.Subscription, error) {
	subs := s.InMemoryStore.List(ctx,
		func(sub *subscription.Subscription) bool {
			return sub.GroupID == groupID && sub.Status == types.StatusPublished
		},
		func(a, b *subscription.Subscription) bool { return a.ID < b.ID },
	)
	return lo.Map(subs, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func (s *InMemorySubscriptionStore) ListExpiredPaused(ctx context.Context, asOf time.Time, defaultMaxPauseDays int, limit int) ([]*subscription.Subscription, error) {
	subs := s.InMemoryStore.List(ctx,
		func(sub *subscription.Subscription) bool {
			return sub.Status == types.StatusPublished &&
				sub.PauseExpired(asOf, defaultMaxPauseDays)
		},
		func(a, b *subscription.Subscription) bool { return a.ID < b.ID },
	)
	if limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}
	return lo.Map(subs, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}
