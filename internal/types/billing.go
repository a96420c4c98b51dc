package types

import (
	"time"

	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/samber/lo"
)

// BillingPeriod is the recurring cycle length shared by every
// subscription in a group.
type BillingPeriod string

const (
	BillingPeriodWeekly  BillingPeriod = "weekly"
	BillingPeriodMonthly BillingPeriod = "monthly"
)

func (p BillingPeriod) Validate() error {
	allowed := []BillingPeriod{BillingPeriodWeekly, BillingPeriodMonthly}
	if !lo.Contains(allowed, p) {
		return ierr.NewErrorf("invalid billing period: %s", p).
			WithHint("Billing period must be weekly or monthly").
			WithReportableDetails(map[string]interface{}{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionStatus is the lifecycle state of a slot subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusActive,
		SubscriptionStatusPaused,
		SubscriptionStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid subscription status: %s", s).
			WithHint("Subscription status must be active, paused or cancelled").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceStatus is the payment state of a cycle invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusFailed   InvoiceStatus = "failed"
	InvoiceStatusRefunded InvoiceStatus = "refunded"
)

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusPaid,
		InvoiceStatusFailed,
		InvoiceStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid invoice status: %s", s).
			WithHint("Invoice status must be pending, paid, failed or refunded").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// OrderStatus is the delivery state of a single meal order.
type OrderStatus string

const (
	OrderStatusScheduled      OrderStatus = "scheduled"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusSkipped        OrderStatus = "skipped"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// CreditStatus tracks the single-consumption invariant on credits.
// Expiry is a pure status transition; expired rows are never deleted.
type CreditStatus string

const (
	CreditStatusActive   CreditStatus = "active"
	CreditStatusConsumed CreditStatus = "consumed"
	CreditStatusExpired  CreditStatus = "expired"
)

// CreditType distinguishes one-meal offsets (skip/holiday) from
// monetary balances (auto-cancel conversions).
type CreditType string

const (
	CreditTypeMeal     CreditType = "meal"
	CreditTypeMonetary CreditType = "monetary"
)

// MealSlot is a meal time category, independently schedulable and priced.
type MealSlot string

const (
	MealSlotBreakfast MealSlot = "breakfast"
	MealSlotLunch     MealSlot = "lunch"
	MealSlotDinner    MealSlot = "dinner"
)

func (s MealSlot) Validate() error {
	allowed := []MealSlot{MealSlotBreakfast, MealSlotLunch, MealSlotDinner}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid meal slot: %s", s).
			WithHint("Meal slot must be breakfast, lunch or dinner").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CouponType is the discount shape of a coupon.
type CouponType string

const (
	CouponTypePercent CouponType = "percent"
	CouponTypeFlat    CouponType = "flat"
)

// JobType identifies a batch job for job run tracking.
type JobType string

const (
	JobTypeRenewal         JobType = "renewal"
	JobTypePaymentRetry    JobType = "payment_retry"
	JobTypeOrderGeneration JobType = "order_generation"
	JobTypeAutoCancel      JobType = "auto_cancel"
	JobTypeCreditExpiry    JobType = "credit_expiry"
)

func (j JobType) Validate() error {
	allowed := []JobType{
		JobTypeRenewal,
		JobTypePaymentRetry,
		JobTypeOrderGeneration,
		JobTypeAutoCancel,
		JobTypeCreditExpiry,
	}
	if !lo.Contains(allowed, j) {
		return ierr.NewErrorf("invalid job type: %s", j).
			WithHint("Unknown batch job type").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// JobRunStatus is the state of a single batch invocation.
type JobRunStatus string

const (
	JobRunStatusRunning JobRunStatus = "running"
	JobRunStatusSuccess JobRunStatus = "success"
	JobRunStatusFailed  JobRunStatus = "failed"
)

// Weekdays is the set of weekdays a subscription is scheduled on.
type Weekdays []time.Weekday

// Contains reports whether the given weekday is scheduled.
func (w Weekdays) Contains(day time.Weekday) bool {
	return lo.Contains(w, day)
}

func (w Weekdays) Validate() error {
	if len(w) == 0 {
		return ierr.NewError("weekday set cannot be empty").
			WithHint("At least one delivery weekday is required").
			Mark(ierr.ErrValidation)
	}
	if len(lo.Uniq(w)) != len(w) {
		return ierr.NewError("weekday set contains duplicates").
			WithHint("Each weekday may appear at most once").
			Mark(ierr.ErrValidation)
	}
	for _, d := range w {
		if d < time.Sunday || d > time.Saturday {
			return ierr.NewErrorf("invalid weekday: %d", d).
				WithHint("Weekdays must be between Sunday (0) and Saturday (6)").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
