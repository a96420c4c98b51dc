package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// RenewalResult summarizes one renewal run.
type RenewalResult struct {
	RunDate         time.Time `json:"runDate"`
	Processed       int       `json:"processed"`
	InvoicesCreated int       `json:"invoicesCreated"`
	Skipped         int       `json:"skipped"`
	Errors          []string  `json:"errors,omitempty"`
	HasMore         bool      `json:"hasMore"`
	Cursor          string    `json:"cursor,omitempty"`
}

// Payload flattens the result for the job run record.
func (r *RenewalResult) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"run_date":         r.RunDate.Format("2006-01-02"),
		"processed":        r.Processed,
		"invoices_created": r.InvoicesCreated,
		"skipped":          r.Skipped,
		"has_more":         r.HasMore,
	}
	if len(r.Errors) > 0 {
		p["errors"] = r.Errors
	}
	if r.Cursor != "" {
		p["cursor"] = r.Cursor
	}
	return p
}

// RenewalService generates the next cycle's invoice for every group
// whose renewal date equals the run date. Each group renews in one
// transaction: invoice creation, credit consumption and renewal-date
// advance commit or roll back together.
type RenewalService interface {
	// Run processes one batch of due groups starting after cursor.
	// Per-group failures are captured, never returned.
	Run(ctx context.Context, runDate time.Time, cursor string) (*RenewalResult, error)
}

type renewalService struct {
	ServiceParams
	pricingSvc PricingService
	creditSvc  CreditService
}

// NewRenewalService creates a new renewal service
func NewRenewalService(params ServiceParams) RenewalService {
	return &renewalService{
		ServiceParams: params,
		pricingSvc:    NewPricingService(params),
		creditSvc:     NewCreditService(params),
	}
}

func (s *renewalService) Run(ctx context.Context, runDate time.Time, cursor string) (*RenewalResult, error) {
	if runDate.IsZero() {
		runDate = time.Now().UTC()
	}
	runDate = types.DateOnly(runDate)

	limit := s.Config.Billing.RenewalBatchSize
	groups, err := s.GroupRepo.ListDueForRenewal(ctx, runDate, cursor, limit)
	if err != nil {
		return nil, err
	}

	result := &RenewalResult{RunDate: runDate, HasMore: len(groups) == limit}
	for _, group := range groups {
		result.Processed++
		result.Cursor = group.ID

		var created bool
		group := group
		err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
			var txErr error
			created, txErr = s.renewGroup(txCtx, group)
			return txErr
		})
		switch {
		case err == nil && created:
			result.InvoicesCreated++
		case err == nil:
			result.Skipped++
		case ierr.IsAlreadyExists(err):
			// A concurrent run won the insert; the next run takes the
			// existence-check path and advances the renewal date.
			result.Skipped++
		default:
			s.Logger.Errorw("group renewal failed",
				"group_id", group.ID, "run_date", runDate, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", group.ID, err.Error()))
		}
	}
	if !result.HasMore {
		result.Cursor = ""
	}
	return result, nil
}

// renewGroup runs inside the caller's transaction. Returns whether a
// new invoice was created; false means the cycle was already invoiced.
func (s *renewalService) renewGroup(ctx context.Context, group *subscription.SubscriptionGroup) (bool, error) {
	cycle, err := types.NextCycleFrom(group.BillingPeriod, group.RenewalDate)
	if err != nil {
		return false, err
	}

	existing, err := s.InvoiceRepo.GetByGroupAndCycleStart(ctx, group.ID, cycle.Start)
	if err != nil && !ierr.IsNotFound(err) {
		return false, err
	}
	if existing != nil {
		// Invoice already written (earlier run or crash before the date
		// advance); just make sure the renewal date moved on.
		return false, s.advanceRenewalDate(ctx, group, cycle.RenewalDate)
	}

	pricing, err := s.pricingSvc.PriceGroupCycle(ctx, group, cycle)
	if err != nil {
		return false, err
	}
	if len(pricing.Lines) == 0 {
		// Every subscription paused or cancelled: no invoice this
		// cycle, but the group must not stay due forever.
		s.Logger.Infow("no billable subscriptions in group, skipping invoice",
			"group_id", group.ID, "cycle_start", cycle.Start)
		return false, s.advanceRenewalDate(ctx, group, cycle.RenewalDate)
	}

	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		GroupID:        group.ID,
		CustomerID:     group.CustomerID,
		VendorID:       group.VendorID,
		CycleStart:     cycle.Start,
		CycleEnd:       cycle.End,
		Subtotal:       pricing.Subtotal,
		DiscountAmount: pricing.DiscountAmount,
		Amount:         pricing.Total,
		Currency:       pricing.Currency,
		InvStatus:      types.InvoiceStatusPending,
		CreditsApplied: pricing.CreditsApplied,
		Metadata:       group.Metadata,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return false, err
	}

	if err := s.creditSvc.ConsumeCredits(ctx, pricing.CreditIDs, inv.ID); err != nil {
		return false, err
	}

	if err := s.advanceRenewalDate(ctx, group, cycle.RenewalDate); err != nil {
		return false, err
	}

	s.Logger.Infow("created renewal invoice",
		"group_id", group.ID,
		"invoice_id", inv.ID,
		"cycle_start", cycle.Start,
		"cycle_end", cycle.End,
		"amount", inv.Amount.String(),
		"credits_applied", inv.CreditsApplied)
	return true, nil
}

func (s *renewalService) advanceRenewalDate(ctx context.Context, group *subscription.SubscriptionGroup, next time.Time) error {
	if !group.RenewalDate.Before(next) {
		return nil
	}
	group.RenewalDate = next
	return s.GroupRepo.Update(ctx, group)
}
