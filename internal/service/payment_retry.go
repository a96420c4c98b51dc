package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	"github.com/tiffinly/tiffinly/internal/types"
)

// PaymentRetryResult summarizes one payment retry run.
type PaymentRetryResult struct {
	Processed int      `json:"processed"`
	Paid      int      `json:"paid"`
	Retried   int      `json:"retried"`
	Paused    int      `json:"paused"`
	Errors    []string `json:"errors,omitempty"`
	HasMore   bool     `json:"hasMore"`
}

// Payload flattens the result for the job run record.
func (r *PaymentRetryResult) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"processed": r.Processed,
		"paid":      r.Paid,
		"retried":   r.Retried,
		"paused":    r.Paused,
		"has_more":  r.HasMore,
	}
	if len(r.Errors) > 0 {
		p["errors"] = r.Errors
	}
	return p
}

// PaymentRetryService charges pending and failed invoices, oldest
// first. An invoice that reaches the attempt cap is left failed and its
// group's active subscriptions are paused; nothing retries it again.
type PaymentRetryService interface {
	Run(ctx context.Context) (*PaymentRetryResult, error)
}

type paymentRetryService struct {
	ServiceParams
}

// NewPaymentRetryService creates a new payment retry service
func NewPaymentRetryService(params ServiceParams) PaymentRetryService {
	return &paymentRetryService{ServiceParams: params}
}

func (s *paymentRetryService) Run(ctx context.Context) (*PaymentRetryResult, error) {
	maxAttempts := s.Config.Billing.MaxPaymentAttempts
	limit := s.Config.Billing.PaymentRetryBatchSize

	invoices, err := s.InvoiceRepo.ListPayable(ctx, maxAttempts, limit)
	if err != nil {
		return nil, err
	}

	result := &PaymentRetryResult{HasMore: len(invoices) == limit}
	for _, inv := range invoices {
		result.Processed++
		inv := inv
		if err := s.chargeInvoice(ctx, inv, maxAttempts, result); err != nil {
			s.Logger.Errorw("invoice charge attempt failed",
				"invoice_id", inv.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", inv.ID, err.Error()))
		}
	}
	return result, nil
}

func (s *paymentRetryService) chargeInvoice(ctx context.Context, inv *invoice.Invoice, maxAttempts int, result *PaymentRetryResult) error {
	now := time.Now().UTC()

	// Zero-amount invoices (fully covered by credits) settle without
	// touching the gateway.
	if inv.Amount.IsZero() {
		return s.DB.WithTx(ctx, func(txCtx context.Context) error {
			inv.InvStatus = types.InvoiceStatusPaid
			inv.PaidAt = lo.ToPtr(now)
			if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
				return err
			}
			result.Paid++
			return nil
		})
	}

	charge, err := s.PaymentGateway.Charge(ctx, inv)
	if err != nil {
		// Transport failure: the provider was never reached, so no
		// attempt is consumed.
		return err
	}

	return s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if charge.OrderID != "" {
			inv.RazorpayOrderID = lo.ToPtr(charge.OrderID)
		}

		if charge.Paid {
			inv.InvStatus = types.InvoiceStatusPaid
			inv.PaymentAttempts++
			inv.PaymentID = lo.ToPtr(charge.PaymentID)
			inv.PaidAt = lo.ToPtr(now)
			if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
				return err
			}
			result.Paid++
			s.Logger.Infow("invoice paid",
				"invoice_id", inv.ID, "payment_id", charge.PaymentID)
			return nil
		}

		inv.InvStatus = types.InvoiceStatusFailed
		inv.PaymentAttempts++
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}
		s.Logger.Warnw("invoice charge declined",
			"invoice_id", inv.ID,
			"attempts", inv.PaymentAttempts,
			"reason", charge.FailureReason)

		if inv.PaymentAttempts >= maxAttempts {
			paused, err := s.pauseGroupSubscriptions(txCtx, inv.GroupID, now)
			if err != nil {
				return err
			}
			result.Paused += paused
			s.Logger.Warnw("payment attempts exhausted, subscriptions paused",
				"invoice_id", inv.ID,
				"group_id", inv.GroupID,
				"paused", paused)
			return nil
		}

		result.Retried++
		return nil
	})
}

func (s *paymentRetryService) pauseGroupSubscriptions(ctx context.Context, groupID string, at time.Time) (int, error) {
	subs, err := s.SubRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}
	paused := 0
	for _, sub := range subs {
		if !sub.IsActive() {
			continue
		}
		sub.SubStatus = types.SubscriptionStatusPaused
		sub.PausedAt = lo.ToPtr(at)
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return paused, err
		}
		paused++
	}
	return paused, nil
}
