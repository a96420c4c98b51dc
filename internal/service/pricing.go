package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiffinly/tiffinly/internal/domain/holiday"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// DefaultCurrency applies when a group has no priced lines at all.
const DefaultCurrency = "INR"

// LinePricing is the priced expansion of one subscription within a cycle.
type LinePricing struct {
	SubscriptionID string          `json:"subscription_id"`
	Slot           types.MealSlot  `json:"slot"`
	ScheduledMeals int             `json:"scheduled_meals"`
	HolidayMeals   int             `json:"holiday_meals"`
	CreditsApplied int             `json:"credits_applied"`
	CreditIDs      []string        `json:"-"`
	BillableMeals  int             `json:"billable_meals"`
	PricePerMeal   decimal.Decimal `json:"price_per_meal"`
	Amount         decimal.Decimal `json:"amount"`
}

// GroupPricing is the full pricing of one group for one cycle. CreditIDs
// carries the exact credits the caller must consume when it turns this
// pricing into an invoice.
type GroupPricing struct {
	Cycle          types.BillingCycle `json:"cycle"`
	Currency       string             `json:"currency"`
	Lines          []LinePricing      `json:"lines"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Total          decimal.Decimal    `json:"total"`
	CreditsApplied int                `json:"credits_applied"`
	CreditIDs      []string           `json:"-"`
}

// PricingService prices a subscription group's cycle: scheduled-meal
// expansion, holiday exclusion, credit application, per-slot price
// lookup, group summation and a single coupon application.
type PricingService interface {
	// PriceGroupCycle prices the group for the given cycle. Read-only:
	// the selected credits are returned, not consumed.
	PriceGroupCycle(ctx context.Context, group *subscription.SubscriptionGroup, cycle types.BillingCycle) (*GroupPricing, error)

	// PreviewPricing prices the cycle that would start on the group's
	// renewal (or the given reference date) without touching any state.
	PreviewPricing(ctx context.Context, groupID string, refDate time.Time) (*GroupPricing, error)
}

type pricingService struct {
	ServiceParams
	creditSvc CreditService
}

// NewPricingService creates a new pricing service
func NewPricingService(params ServiceParams) PricingService {
	return &pricingService{
		ServiceParams: params,
		creditSvc:     NewCreditService(params),
	}
}

func (s *pricingService) PriceGroupCycle(ctx context.Context, group *subscription.SubscriptionGroup, cycle types.BillingCycle) (*GroupPricing, error) {
	subs, err := s.SubRepo.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	holidays, err := s.HolidayRepo.ListByVendorBetween(ctx, group.VendorID, cycle.Start, cycle.End)
	if err != nil {
		return nil, err
	}

	result := &GroupPricing{
		Cycle:    cycle,
		Subtotal: decimal.Zero,
		Total:    decimal.Zero,
	}

	for _, sub := range subs {
		if !sub.IsActive() {
			continue
		}
		line, err := s.priceLine(ctx, sub, cycle, holidays)
		if err != nil {
			return nil, err
		}

		if result.Currency == "" {
			result.Currency = line.currency
		} else if line.currency != "" && line.currency != result.Currency {
			return nil, ierr.NewError("mixed currencies within group").
				WithHint("All slot prices of a vendor must share one currency").
				WithReportableDetails(map[string]interface{}{
					"group_id": group.ID,
					"got":      line.currency,
					"want":     result.Currency,
				}).
				Mark(ierr.ErrValidation)
		}

		result.Lines = append(result.Lines, line.LinePricing)
		result.Subtotal = result.Subtotal.Add(line.Amount)
		result.CreditsApplied += line.CreditsApplied
		result.CreditIDs = append(result.CreditIDs, line.CreditIDs...)
	}

	if result.Currency == "" {
		result.Currency = DefaultCurrency
	}
	result.Subtotal = result.Subtotal.Round(2)

	// The coupon applies once to the summed group amount, never per line.
	if group.CouponID != nil {
		cpn, err := s.CouponRepo.Get(ctx, *group.CouponID)
		if err != nil {
			if !ierr.IsNotFound(err) {
				return nil, err
			}
			s.Logger.Warnw("coupon on group no longer exists, billing without discount",
				"group_id", group.ID, "coupon_id", *group.CouponID)
		} else {
			result.DiscountAmount = cpn.DiscountFor(result.Subtotal)
		}
	}

	result.Total = result.Subtotal.Sub(result.DiscountAmount).Round(2)
	if result.Total.IsNegative() {
		result.Total = decimal.Zero
	}
	return result, nil
}

type pricedLine struct {
	LinePricing
	currency string
}

func (s *pricingService) priceLine(ctx context.Context, sub *subscription.Subscription, cycle types.BillingCycle, holidays []*holiday.VendorHoliday) (*pricedLine, error) {
	line := &pricedLine{LinePricing: LinePricing{
		SubscriptionID: sub.ID,
		Slot:           sub.Slot,
		PricePerMeal:   decimal.Zero,
		Amount:         decimal.Zero,
	}}

	for _, date := range types.DatesInCycle(cycle, sub.Weekdays) {
		if holiday.Covered(holidays, date, sub.Slot) {
			line.HolidayMeals++
			continue
		}
		line.ScheduledMeals++
	}

	if line.ScheduledMeals == 0 {
		return line, nil
	}

	selection, err := s.creditSvc.SelectCredits(ctx, sub.ID, line.ScheduledMeals, cycle.Start)
	if err != nil {
		return nil, err
	}
	line.CreditsApplied = selection.Meals
	line.CreditIDs = selection.CreditIDs
	line.BillableMeals = line.ScheduledMeals - selection.Meals
	if line.BillableMeals < 0 {
		line.BillableMeals = 0
	}

	vp, err := s.PriceRepo.GetEnabled(ctx, sub.VendorID, sub.Slot)
	if err != nil {
		return nil, err
	}
	line.currency = vp.Currency
	line.PricePerMeal = vp.PricePerMeal
	line.Amount = vp.PricePerMeal.Mul(decimal.NewFromInt(int64(line.BillableMeals))).Round(2)
	return line, nil
}

func (s *pricingService) PreviewPricing(ctx context.Context, groupID string, refDate time.Time) (*GroupPricing, error) {
	group, err := s.GroupRepo.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if refDate.IsZero() {
		refDate = group.RenewalDate
	}
	cycle, err := types.NextCycleFrom(group.BillingPeriod, refDate)
	if err != nil {
		return nil, err
	}
	return s.PriceGroupCycle(ctx, group, cycle)
}
