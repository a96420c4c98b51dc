package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tiffinly/tiffinly/internal/domain/coupon"
	"github.com/tiffinly/tiffinly/internal/domain/credit"
	"github.com/tiffinly/tiffinly/internal/domain/holiday"
	"github.com/tiffinly/tiffinly/internal/domain/price"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/testutil"
	"github.com/tiffinly/tiffinly/internal/types"
)

type PricingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PricingService
	params  ServiceParams
}

func TestPricingService(t *testing.T) {
	suite.Run(t, new(PricingServiceSuite))
}

func (s *PricingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		GroupRepo:      s.GetStores().SubscriptionGroupRepo,
		SubRepo:        s.GetStores().SubscriptionRepo,
		InvoiceRepo:    s.GetStores().InvoiceRepo,
		CreditRepo:     s.GetStores().CreditRepo,
		OrderRepo:      s.GetStores().OrderRepo,
		PriceRepo:      s.GetStores().PriceRepo,
		HolidayRepo:    s.GetStores().HolidayRepo,
		CouponRepo:     s.GetStores().CouponRepo,
		JobRunRepo:     s.GetStores().JobRunRepo,
		PaymentGateway: s.GetPaymentGateway(),
	}
	s.service = NewPricingService(s.params)
}

// fourWeekCycle is 2024-01-01 (Monday) through 2024-01-28 (Sunday).
func (s *PricingServiceSuite) fourWeekCycle() types.BillingCycle {
	return types.BillingCycle{
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC),
		RenewalDate: time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC),
	}
}

func (s *PricingServiceSuite) seedGroup(couponID *string) *subscription.SubscriptionGroup {
	group := &subscription.SubscriptionGroup{
		ID:            "subg-1",
		CustomerID:    "cust-1",
		VendorID:      "vend-1",
		BillingPeriod: types.BillingPeriodMonthly,
		RenewalDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CouponID:      couponID,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionGroupRepo.Create(s.GetContext(), group))
	return group
}

func (s *PricingServiceSuite) seedSubscription(id string, slot types.MealSlot, weekdays types.Weekdays) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:         id,
		GroupID:    "subg-1",
		CustomerID: "cust-1",
		VendorID:   "vend-1",
		Slot:       slot,
		Weekdays:   weekdays,
		SubStatus:  types.SubscriptionStatusActive,
		SkipLimit:  4,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *PricingServiceSuite) seedPrice(slot types.MealSlot, amount string) {
	s.NoError(s.GetStores().PriceRepo.Create(s.GetContext(), &price.VendorPrice{
		ID:           "vprc-" + string(slot),
		VendorID:     "vend-1",
		Slot:         slot,
		PricePerMeal: decimal.RequireFromString(amount),
		Currency:     "INR",
		Enabled:      true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *PricingServiceSuite) seedMealCredit(id, subID string, expiresAt time.Time) {
	s.NoError(s.GetStores().CreditRepo.Create(s.GetContext(), &credit.Credit{
		ID:             id,
		CustomerID:     "cust-1",
		SubscriptionID: lo.ToPtr(subID),
		Type:           types.CreditTypeMeal,
		Source:         types.CreditSourceSkip,
		MealCount:      1,
		ExpiresAt:      lo.ToPtr(expiresAt),
		CreditStatus:   types.CreditStatusActive,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *PricingServiceSuite) TestScheduledMinusHolidaysMinusCredits() {
	// 20 weekday meals, 2 holiday-excluded, 3 credits -> 15 billable.
	group := s.seedGroup(nil)
	weekdays := types.Weekdays{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	s.seedSubscription("sub-1", types.MealSlotLunch, weekdays)
	s.seedPrice(types.MealSlotLunch, "100")

	// Jan 3 lunch only, Jan 10 all slots: both Wednesdays.
	s.NoError(s.GetStores().HolidayRepo.Create(s.GetContext(), &holiday.VendorHoliday{
		ID: "vhol-1", VendorID: "vend-1",
		Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Slot: types.MealSlotLunch,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
	s.NoError(s.GetStores().HolidayRepo.Create(s.GetContext(), &holiday.VendorHoliday{
		ID: "vhol-2", VendorID: "vend-1",
		Date:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))

	expiry := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.seedMealCredit("cred-1", "sub-1", expiry)
	s.seedMealCredit("cred-2", "sub-1", expiry)
	s.seedMealCredit("cred-3", "sub-1", expiry)

	result, err := s.service.PriceGroupCycle(s.GetContext(), group, s.fourWeekCycle())
	s.NoError(err)
	s.Len(result.Lines, 1)

	line := result.Lines[0]
	s.Equal(18, line.ScheduledMeals)
	s.Equal(2, line.HolidayMeals)
	s.Equal(3, line.CreditsApplied)
	s.Equal(15, line.BillableMeals)
	s.True(line.Amount.Equal(decimal.NewFromInt(1500)), "got %s", line.Amount)
	s.True(result.Total.Equal(decimal.NewFromInt(1500)))
	s.Equal("INR", result.Currency)
	s.Len(result.CreditIDs, 3)
}

func (s *PricingServiceSuite) TestGroupSumsLinesAndAppliesCouponOnce() {
	s.NoError(s.GetStores().CouponRepo.Create(s.GetContext(), &coupon.Coupon{
		ID:        "cpn-1",
		Code:      "SAVE10",
		Type:      types.CouponTypePercent,
		Value:     decimal.NewFromInt(10),
		MinAmount: decimal.Zero,
		Active:    true,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
	group := s.seedGroup(lo.ToPtr("cpn-1"))
	weekdays := types.Weekdays{time.Monday, time.Wednesday, time.Friday}
	s.seedSubscription("sub-1", types.MealSlotLunch, weekdays)
	s.seedSubscription("sub-2", types.MealSlotDinner, weekdays)
	s.seedPrice(types.MealSlotLunch, "100")
	s.seedPrice(types.MealSlotDinner, "120")

	result, err := s.service.PriceGroupCycle(s.GetContext(), group, s.fourWeekCycle())
	s.NoError(err)
	s.Len(result.Lines, 2)

	// 12 meals per line: 1200 + 1440 = 2640, minus 10% = 2376.
	s.True(result.Subtotal.Equal(decimal.NewFromInt(2640)), "got %s", result.Subtotal)
	s.True(result.DiscountAmount.Equal(decimal.NewFromInt(264)))
	s.True(result.Total.Equal(decimal.NewFromInt(2376)))
}

func (s *PricingServiceSuite) TestCouponMinAmountGateAndCap() {
	s.NoError(s.GetStores().CouponRepo.Create(s.GetContext(), &coupon.Coupon{
		ID:          "cpn-1",
		Code:        "FLAT500",
		Type:        types.CouponTypeFlat,
		Value:       decimal.NewFromInt(500),
		MinAmount:   decimal.NewFromInt(5000),
		MaxDiscount: decimal.NewFromInt(300),
		Active:      true,
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}))
	group := s.seedGroup(lo.ToPtr("cpn-1"))
	weekdays := types.Weekdays{time.Monday, time.Wednesday, time.Friday}
	s.seedSubscription("sub-1", types.MealSlotLunch, weekdays)
	s.seedPrice(types.MealSlotLunch, "100")

	// Subtotal 1200 is below the 5000 gate: no discount at all.
	result, err := s.service.PriceGroupCycle(s.GetContext(), group, s.fourWeekCycle())
	s.NoError(err)
	s.True(result.DiscountAmount.IsZero())
	s.True(result.Total.Equal(result.Subtotal))
}

func (s *PricingServiceSuite) TestPriceNotFoundForUnpricedSlot() {
	group := s.seedGroup(nil)
	s.seedSubscription("sub-1", types.MealSlotBreakfast, types.Weekdays{time.Monday})

	_, err := s.service.PriceGroupCycle(s.GetContext(), group, s.fourWeekCycle())
	s.Error(err)
	s.True(ierr.IsPriceNotFound(err))
}

func (s *PricingServiceSuite) TestPausedSubscriptionsAreNotBilled() {
	group := s.seedGroup(nil)
	sub := s.seedSubscription("sub-1", types.MealSlotLunch, types.Weekdays{time.Monday})
	s.seedPrice(types.MealSlotLunch, "100")

	sub.SubStatus = types.SubscriptionStatusPaused
	sub.PausedAt = lo.ToPtr(time.Now().UTC())
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	result, err := s.service.PriceGroupCycle(s.GetContext(), group, s.fourWeekCycle())
	s.NoError(err)
	s.Empty(result.Lines)
	s.True(result.Total.IsZero())
}

func (s *PricingServiceSuite) TestCreditsNeverExceedScheduledMeals() {
	group := s.seedGroup(nil)
	// Single Monday in the span subset: use a one-week cycle.
	cycle := types.BillingCycle{
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		RenewalDate: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	s.seedSubscription("sub-1", types.MealSlotLunch, types.Weekdays{time.Monday, time.Thursday})
	s.seedPrice(types.MealSlotLunch, "100")

	expiry := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"cred-1", "cred-2", "cred-3", "cred-4", "cred-5"} {
		s.seedMealCredit(id, "sub-1", expiry)
	}

	result, err := s.service.PriceGroupCycle(s.GetContext(), group, cycle)
	s.NoError(err)
	line := result.Lines[0]
	s.Equal(2, line.ScheduledMeals)
	s.Equal(2, line.CreditsApplied)
	s.Equal(0, line.BillableMeals)
	s.True(result.Total.IsZero())
}

func (s *PricingServiceSuite) TestPreviewPricingUsesRenewalCycle() {
	group := s.seedGroup(nil)
	s.seedSubscription("sub-1", types.MealSlotLunch, types.Weekdays{time.Monday})
	s.seedPrice(types.MealSlotLunch, "100")

	// Renewal 2024-01-01 -> cycle is January itself (anchored on the
	// renewal date), 5 Mondays.
	result, err := s.service.PreviewPricing(s.GetContext(), group.ID, time.Time{})
	s.NoError(err)
	s.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), result.Cycle.Start)
	s.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), result.Cycle.End)
	s.Equal(5, result.Lines[0].ScheduledMeals)
}
