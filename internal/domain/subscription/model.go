package subscription

import (
	"time"

	"github.com/tiffinly/tiffinly/internal/types"
)

// SubscriptionGroup bundles every slot subscription a customer holds
// with one vendor. It is the unit of billing: all members share the
// group's billing period and renewal date, and each cycle produces one
// invoice for the group.
type SubscriptionGroup struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customer_id"`
	VendorID      string              `json:"vendor_id"`
	BillingPeriod types.BillingPeriod `json:"billing_period"`
	RenewalDate   time.Time           `json:"renewal_date"`
	CouponID      *string             `json:"coupon_id,omitempty"`
	Metadata      types.Metadata      `json:"metadata,omitempty"`
	types.BaseModel
}

// Subscription is a single (slot, weekday-set) commitment within a
// group. It is soft-terminated, never hard-deleted, so billing history
// stays intact.
type Subscription struct {
	ID           string                   `json:"id"`
	GroupID      string                   `json:"group_id"`
	CustomerID   string                   `json:"customer_id"`
	VendorID     string                   `json:"vendor_id"`
	Slot         types.MealSlot           `json:"slot"`
	Weekdays     types.Weekdays           `json:"weekdays"`
	SubStatus    types.SubscriptionStatus `json:"subscription_status"`
	SkipLimit    int                      `json:"skip_limit"`
	SkipsUsed    int                      `json:"skips_used"`
	PausedAt     *time.Time               `json:"paused_at,omitempty"`
	MaxPauseDays int                      `json:"max_pause_days"`
	CancelledAt  *time.Time               `json:"cancelled_at,omitempty"`
	types.BaseModel
}

// IsActive returns true if the subscription is billable.
func (s *Subscription) IsActive() bool {
	return s.SubStatus == types.SubscriptionStatusActive
}

// IsPaused returns true if the subscription is paused.
func (s *Subscription) IsPaused() bool {
	return s.SubStatus == types.SubscriptionStatusPaused
}

// IsCancelled returns true if the subscription is terminated.
func (s *Subscription) IsCancelled() bool {
	return s.SubStatus == types.SubscriptionStatusCancelled
}

// CanSkip returns true if the subscription has skip allowance left.
func (s *Subscription) CanSkip() bool {
	return s.IsActive() && s.SkipsUsed < s.SkipLimit
}

// PauseExpired reports whether the subscription has been paused longer
// than its allowance as of the given time.
func (s *Subscription) PauseExpired(asOf time.Time, defaultMaxPauseDays int) bool {
	if !s.IsPaused() || s.PausedAt == nil {
		return false
	}
	maxDays := s.MaxPauseDays
	if maxDays <= 0 {
		maxDays = defaultMaxPauseDays
	}
	return asOf.Sub(*s.PausedAt) > time.Duration(maxDays)*24*time.Hour
}
