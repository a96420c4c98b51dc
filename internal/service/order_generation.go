package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"

	"github.com/tiffinly/tiffinly/internal/domain/holiday"
	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	"github.com/tiffinly/tiffinly/internal/domain/order"
	"github.com/tiffinly/tiffinly/internal/types"
)

// orderGenWorkers bounds concurrent invoice expansion.
const orderGenWorkers = 4

// OrderGenerationResult summarizes one order generation run.
type OrderGenerationResult struct {
	Processed     int      `json:"processed"`
	OrdersCreated int      `json:"ordersCreated"`
	Duplicates    int      `json:"duplicates"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors,omitempty"`
	HasMore       bool     `json:"hasMore"`
}

// Payload flattens the result for the job run record.
func (r *OrderGenerationResult) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"processed":      r.Processed,
		"orders_created": r.OrdersCreated,
		"duplicates":     r.Duplicates,
		"skipped":        r.Skipped,
		"has_more":       r.HasMore,
	}
	if len(r.Errors) > 0 {
		p["errors"] = r.Errors
	}
	return p
}

// OrderGenerationService expands each paid invoice's cycle span into
// delivery orders: (cycle dates x scheduled weekdays x slots), minus
// vendor holidays. The unique index on (subscription, date, slot) makes
// re-runs create nothing twice.
type OrderGenerationService interface {
	Run(ctx context.Context) (*OrderGenerationResult, error)
}

type orderGenerationService struct {
	ServiceParams
}

// NewOrderGenerationService creates a new order generation service
func NewOrderGenerationService(params ServiceParams) OrderGenerationService {
	return &orderGenerationService{ServiceParams: params}
}

type invoiceOutcome struct {
	invoiceID  string
	created    int
	duplicates int
	skipped    int
	err        error
}

func (s *orderGenerationService) Run(ctx context.Context) (*OrderGenerationResult, error) {
	limit := s.Config.Billing.OrderGenerationBatchSize
	invoices, err := s.InvoiceRepo.ListPaidWithoutOrders(ctx, limit)
	if err != nil {
		return nil, err
	}

	p := pool.NewWithResults[*invoiceOutcome]().
		WithContext(ctx).
		WithMaxGoroutines(orderGenWorkers)
	for _, inv := range invoices {
		inv := inv
		p.Go(func(ctx context.Context) (*invoiceOutcome, error) {
			outcome := s.generateForInvoice(ctx, inv)
			return outcome, nil
		})
	}
	outcomes, err := p.Wait()
	if err != nil {
		return nil, err
	}

	result := &OrderGenerationResult{HasMore: len(invoices) == limit}
	for _, o := range outcomes {
		result.Processed++
		result.OrdersCreated += o.created
		result.Duplicates += o.duplicates
		result.Skipped += o.skipped
		if o.err != nil {
			s.Logger.Errorw("order generation failed for invoice",
				"invoice_id", o.invoiceID, "error", o.err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", o.invoiceID, o.err.Error()))
		}
	}
	return result, nil
}

func (s *orderGenerationService) generateForInvoice(ctx context.Context, inv *invoice.Invoice) *invoiceOutcome {
	outcome := &invoiceOutcome{invoiceID: inv.ID}

	subs, err := s.SubRepo.ListByGroup(ctx, inv.GroupID)
	if err != nil {
		outcome.err = err
		return outcome
	}
	holidays, err := s.HolidayRepo.ListByVendorBetween(ctx, inv.VendorID, inv.CycleStart, inv.CycleEnd)
	if err != nil {
		outcome.err = err
		return outcome
	}

	span := types.BillingCycle{Start: inv.CycleStart, End: inv.CycleEnd}
	outcome.err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		for _, sub := range subs {
			if !sub.IsActive() {
				continue
			}
			for _, date := range types.DatesInCycle(span, sub.Weekdays) {
				if holiday.Covered(holidays, date, sub.Slot) {
					outcome.skipped++
					continue
				}
				o := &order.Order{
					ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
					SubscriptionID: sub.ID,
					GroupID:        inv.GroupID,
					InvoiceID:      inv.ID,
					CustomerID:     inv.CustomerID,
					VendorID:       inv.VendorID,
					ServiceDate:    date,
					Slot:           sub.Slot,
					OrderStatus:    types.OrderStatusScheduled,
					BaseModel:      types.GetDefaultBaseModel(txCtx),
				}
				created, err := s.OrderRepo.CreateIgnoreDuplicate(txCtx, o)
				if err != nil {
					return err
				}
				if created {
					outcome.created++
				} else {
					outcome.duplicates++
				}
			}
		}

		inv.OrdersGeneratedAt = lo.ToPtr(time.Now().UTC())
		return s.InvoiceRepo.Update(txCtx, inv)
	})

	if outcome.err == nil {
		s.Logger.Infow("generated orders for invoice",
			"invoice_id", inv.ID,
			"orders_created", outcome.created,
			"duplicates", outcome.duplicates,
			"holidays_skipped", outcome.skipped)
	}
	return outcome
}
