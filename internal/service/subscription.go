package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// SkipResult reports what a skip did: the cancelled order if one was
// scheduled, and the credit issued for it.
type SkipResult struct {
	Subscription *subscription.Subscription `json:"subscription"`
	OrderID      string                     `json:"order_id,omitempty"`
	CreditID     string                     `json:"credit_id"`
	SkipsLeft    int                        `json:"skips_left"`
}

// SubscriptionService is the subscription lifecycle: pause, resume,
// cancel and per-meal skip. These are the flows that feed the credit
// ledger and the auto-cancel job.
type SubscriptionService interface {
	Get(ctx context.Context, id string) (*subscription.Subscription, error)

	// Pause stops billing and delivery. Only active subscriptions pause.
	Pause(ctx context.Context, id string) (*subscription.Subscription, error)

	// Resume reactivates a paused subscription. Cancelled ones stay
	// cancelled.
	Resume(ctx context.Context, id string) (*subscription.Subscription, error)

	// Cancel soft-terminates the subscription.
	Cancel(ctx context.Context, id string) (*subscription.Subscription, error)

	// Skip consumes one skip allowance for a scheduled (date, slot)
	// meal: the matching scheduled order is skipped and a one-meal
	// credit is issued for a future cycle.
	Skip(ctx context.Context, id string, date time.Time) (*SkipResult, error)
}

type subscriptionService struct {
	ServiceParams
	creditSvc CreditService
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
		creditSvc:     NewCreditService(params),
	}
}

func (s *subscriptionService) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	return s.SubRepo.Get(ctx, id)
}

func (s *subscriptionService) Pause(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive() {
		return nil, ierr.NewError("only active subscriptions can be paused").
			WithHint("Subscription is not active").
			WithReportableDetails(map[string]interface{}{
				"id":     id,
				"status": sub.SubStatus,
			}).
			Mark(ierr.ErrValidation)
	}

	sub.SubStatus = types.SubscriptionStatusPaused
	sub.PausedAt = lo.ToPtr(time.Now().UTC())
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.Logger.Infow("paused subscription", "subscription_id", id)
	return sub, nil
}

func (s *subscriptionService) Resume(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.IsCancelled() {
		return nil, ierr.NewError("cancelled subscriptions cannot be resumed").
			WithHint("Subscription is cancelled").
			WithReportableDetails(map[string]interface{}{"id": id}).
			Mark(ierr.ErrValidation)
	}
	if !sub.IsPaused() {
		return nil, ierr.NewError("only paused subscriptions can be resumed").
			WithHint("Subscription is not paused").
			WithReportableDetails(map[string]interface{}{
				"id":     id,
				"status": sub.SubStatus,
			}).
			Mark(ierr.ErrValidation)
	}

	sub.SubStatus = types.SubscriptionStatusActive
	sub.PausedAt = nil
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.Logger.Infow("resumed subscription", "subscription_id", id)
	return sub, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.IsCancelled() {
		return sub, nil
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		// Remaining scheduled meals are dropped, not converted: the
		// customer chose to leave. Conversion is the auto-cancel path.
		if _, err := s.OrderRepo.CancelScheduledAfter(txCtx, sub.ID, time.Now().UTC()); err != nil {
			return err
		}
		sub.SubStatus = types.SubscriptionStatusCancelled
		sub.CancelledAt = lo.ToPtr(time.Now().UTC())
		sub.PausedAt = nil
		return s.SubRepo.Update(txCtx, sub)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Infow("cancelled subscription", "subscription_id", id)
	return sub, nil
}

func (s *subscriptionService) Skip(ctx context.Context, id string, date time.Time) (*SkipResult, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive() {
		return nil, ierr.NewError("only active subscriptions can skip").
			WithHint("Subscription is not active").
			WithReportableDetails(map[string]interface{}{
				"id":     id,
				"status": sub.SubStatus,
			}).
			Mark(ierr.ErrValidation)
	}
	if !sub.CanSkip() {
		return nil, ierr.NewError("skip limit reached").
			WithHint("No skips left for this subscription").
			WithReportableDetails(map[string]interface{}{
				"id":         id,
				"skip_limit": sub.SkipLimit,
				"skips_used": sub.SkipsUsed,
			}).
			Mark(ierr.ErrValidation)
	}
	date = types.DateOnly(date)
	if date.Before(types.DateOnly(time.Now().UTC())) {
		return nil, ierr.NewError("cannot skip a past date").
			WithHint("Skip date must be today or later").
			WithReportableDetails(map[string]interface{}{"date": date}).
			Mark(ierr.ErrValidation)
	}

	result := &SkipResult{}
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		// The current cycle's order, when one exists, flips to skipped;
		// a skip before order generation just earns the credit.
		o, err := s.OrderRepo.GetScheduled(txCtx, sub.ID, date, sub.Slot)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if o != nil {
			o.OrderStatus = types.OrderStatusSkipped
			if err := s.OrderRepo.Update(txCtx, o); err != nil {
				return err
			}
			result.OrderID = o.ID
		}

		c, err := s.creditSvc.IssueMealCredit(txCtx, sub.ID, sub.CustomerID, types.CreditSourceSkip, 1)
		if err != nil {
			return err
		}
		result.CreditID = c.ID

		sub.SkipsUsed++
		return s.SubRepo.Update(txCtx, sub)
	})
	if err != nil {
		return nil, err
	}

	result.Subscription = sub
	result.SkipsLeft = sub.SkipLimit - sub.SkipsUsed
	s.Logger.Infow("skipped meal",
		"subscription_id", id,
		"date", date,
		"order_id", result.OrderID,
		"credit_id", result.CreditID)
	return result, nil
}
