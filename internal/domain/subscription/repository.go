package subscription

import (
	"context"
	"time"
)

// GroupRepository defines persistence operations for subscription groups.
type GroupRepository interface {
	// Create creates a new subscription group
	Create(ctx context.Context, group *SubscriptionGroup) error

	// Get retrieves a group by ID
	Get(ctx context.Context, id string) (*SubscriptionGroup, error)

	// Update updates an existing group
	Update(ctx context.Context, group *SubscriptionGroup) error

	// ListDueForRenewal retrieves groups whose renewal date equals the
	// run date, in stable id order, starting strictly after afterID.
	// Used by the renewal job for batched, resumable processing.
	ListDueForRenewal(ctx context.Context, runDate time.Time, afterID string, limit int) ([]*SubscriptionGroup, error)
}

// Repository defines persistence operations for slot subscriptions.
type Repository interface {
	// Create creates a new subscription
	Create(ctx context.Context, sub *Subscription) error

	// Get retrieves a subscription by ID
	Get(ctx context.Context, id string) (*Subscription, error)

	// Update updates an existing subscription
	Update(ctx context.Context, sub *Subscription) error

	// ListByGroup retrieves all subscriptions in a group
	ListByGroup(ctx context.Context, groupID string) ([]*Subscription, error)

	// ListExpiredPaused retrieves paused subscriptions whose pause
	// allowance has elapsed as of the given time.
	ListExpiredPaused(ctx context.Context, asOf time.Time, defaultMaxPauseDays int, limit int) ([]*Subscription, error)
}
