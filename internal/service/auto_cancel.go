package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// AutoCancelResult summarizes one auto-cancel run.
type AutoCancelResult struct {
	Processed         int             `json:"processed"`
	Cancelled         int             `json:"cancelled"`
	CreditsConverted  int             `json:"credits_converted"`
	TotalCreditAmount decimal.Decimal `json:"total_credit_amount"`
	Errors            []string        `json:"errors,omitempty"`
}

// Payload flattens the result for the job run record.
func (r *AutoCancelResult) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"processed":           r.Processed,
		"cancelled":           r.Cancelled,
		"credits_converted":   r.CreditsConverted,
		"total_credit_amount": r.TotalCreditAmount.String(),
	}
	if len(r.Errors) > 0 {
		p["errors"] = r.Errors
	}
	return p
}

// AutoCancelService cancels subscriptions that stayed paused past their
// allowance and converts the unused prepaid meals into a customer-level
// monetary credit. The cancelled orders are what gets valued, so a
// re-run can never convert the same meals twice.
type AutoCancelService interface {
	Run(ctx context.Context, asOf time.Time) (*AutoCancelResult, error)
}

type autoCancelService struct {
	ServiceParams
	creditSvc CreditService
}

// NewAutoCancelService creates a new auto-cancel service
func NewAutoCancelService(params ServiceParams) AutoCancelService {
	return &autoCancelService{
		ServiceParams: params,
		creditSvc:     NewCreditService(params),
	}
}

func (s *autoCancelService) Run(ctx context.Context, asOf time.Time) (*AutoCancelResult, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	subs, err := s.SubRepo.ListExpiredPaused(ctx, asOf,
		s.Config.Billing.DefaultMaxPauseDays, s.Config.Billing.RenewalBatchSize)
	if err != nil {
		return nil, err
	}

	result := &AutoCancelResult{TotalCreditAmount: decimal.Zero}
	for _, sub := range subs {
		result.Processed++
		sub := sub
		err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
			return s.cancelSubscription(txCtx, sub, asOf, result)
		})
		if err != nil {
			s.Logger.Errorw("auto-cancel failed for subscription",
				"subscription_id", sub.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", sub.ID, err.Error()))
		}
	}
	return result, nil
}

func (s *autoCancelService) cancelSubscription(ctx context.Context, sub *subscription.Subscription, asOf time.Time, result *AutoCancelResult) error {
	remaining, err := s.OrderRepo.CancelScheduledAfter(ctx, sub.ID, asOf)
	if err != nil {
		return err
	}

	if remaining > 0 {
		vp, err := s.PriceRepo.GetEnabled(ctx, sub.VendorID, sub.Slot)
		if err != nil && !ierr.IsPriceNotFound(err) {
			return err
		}
		if err != nil {
			// No enabled price left to value the meals with; cancel
			// without conversion rather than blocking forever.
			s.Logger.Warnw("no enabled price for cancelled subscription, skipping conversion",
				"subscription_id", sub.ID, "slot", sub.Slot, "meals", remaining)
		} else {
			amount := vp.PricePerMeal.Mul(decimal.NewFromInt(int64(remaining)))
			// The conversion refunds prepaid meals, so it can never
			// exceed what the cycle's invoice actually collected.
			inv, err := s.InvoiceRepo.GetLatestPaidByGroup(ctx, sub.GroupID)
			if err != nil && !ierr.IsNotFound(err) {
				return err
			}
			if inv != nil && amount.GreaterThan(inv.Amount) {
				s.Logger.Infow("capping conversion at invoiced amount",
					"subscription_id", sub.ID,
					"invoice_id", inv.ID,
					"priced", amount.String(),
					"invoiced", inv.Amount.String())
				amount = inv.Amount
			}
			if amount.IsPositive() {
				if _, err := s.creditSvc.IssueMonetaryCredit(ctx, sub.CustomerID,
					types.CreditSourceCancellation, amount); err != nil {
					return err
				}
				result.CreditsConverted += remaining
				result.TotalCreditAmount = result.TotalCreditAmount.Add(amount.Round(2))
			}
		}
	}

	sub.SubStatus = types.SubscriptionStatusCancelled
	sub.CancelledAt = lo.ToPtr(asOf)
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return err
	}
	result.Cancelled++

	s.Logger.Infow("auto-cancelled paused subscription",
		"subscription_id", sub.ID,
		"paused_at", sub.PausedAt,
		"meals_converted", remaining)
	return nil
}
