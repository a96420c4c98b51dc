package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	"github.com/tiffinly/tiffinly/internal/domain/order"
	"github.com/tiffinly/tiffinly/internal/domain/price"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	"github.com/tiffinly/tiffinly/internal/testutil"
	"github.com/tiffinly/tiffinly/internal/types"
)

type AutoCancelServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AutoCancelService
	params  ServiceParams
}

func TestAutoCancelService(t *testing.T) {
	suite.Run(t, new(AutoCancelServiceSuite))
}

func (s *AutoCancelServiceSuite) SetupTest() {
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
	s.service = NewAutoCancelService(s.params)
}

var autoCancelAsOf = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// seedExpiredPausedSub pauses the subscription well past the 30-day
// default allowance.
func (s *AutoCancelServiceSuite) seedExpiredPausedSub(id string) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:         id,
		GroupID:    "subg-1",
		CustomerID: "cust-1",
		VendorID:   "vend-1",
		Slot:       types.MealSlotLunch,
		Weekdays:   types.Weekdays{time.Monday},
		SubStatus:  types.SubscriptionStatusPaused,
		PausedAt:   lo.ToPtr(autoCancelAsOf.AddDate(0, 0, -45)),
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *AutoCancelServiceSuite) seedScheduledOrders(subID string, n int) {
	for i := 0; i < n; i++ {
		_, err := s.GetStores().OrderRepo.CreateIgnoreDuplicate(s.GetContext(), &order.Order{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
			SubscriptionID: subID,
			GroupID:        "subg-1",
			InvoiceID:      "inv-1",
			CustomerID:     "cust-1",
			VendorID:       "vend-1",
			ServiceDate:    autoCancelAsOf.AddDate(0, 0, i+1),
			Slot:           types.MealSlotLunch,
			OrderStatus:    types.OrderStatusScheduled,
			BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
		})
		s.NoError(err)
	}
}

func (s *AutoCancelServiceSuite) seedPrice(amount string) {
	s.NoError(s.GetStores().PriceRepo.Create(s.GetContext(), &price.VendorPrice{
		ID:           "vprc-lunch",
		VendorID:     "vend-1",
		Slot:         types.MealSlotLunch,
		PricePerMeal: decimal.RequireFromString(amount),
		Currency:     "INR",
		Enabled:      true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *AutoCancelServiceSuite) TestConvertsRemainingMealsToCredit() {
	sub := s.seedExpiredPausedSub("sub-1")
	s.seedScheduledOrders("sub-1", 4)
	s.seedPrice("20")

	result, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Cancelled)
	s.Equal(4, result.CreditsConverted)
	s.True(result.TotalCreditAmount.Equal(decimal.NewFromInt(80)), "got %s", result.TotalCreditAmount)

	cancelled, _ := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.Equal(types.SubscriptionStatusCancelled, cancelled.SubStatus)
	s.NotNil(cancelled.CancelledAt)

	// The orders were flipped, so nothing is left to convert.
	remaining, _ := s.GetStores().OrderRepo.CountRemainingScheduled(
		s.GetContext(), sub.ID, autoCancelAsOf)
	s.Equal(0, remaining)

	// The customer holds one monetary credit for the full amount.
	credits := s.GetStores().CreditRepo.InMemoryStore.List(s.GetContext(), nil, nil)
	s.Len(credits, 1)
	s.Equal(types.CreditTypeMonetary, credits[0].Type)
	s.Equal(types.CreditSourceCancellation, credits[0].Source)
	s.True(credits[0].Amount.Equal(decimal.NewFromInt(80)))
	s.Nil(credits[0].SubscriptionID)
}

func (s *AutoCancelServiceSuite) TestReRunConvertsNothingTwice() {
	s.seedExpiredPausedSub("sub-1")
	s.seedScheduledOrders("sub-1", 4)
	s.seedPrice("20")

	_, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)

	second, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)
	s.Equal(0, second.Processed)
	credits := s.GetStores().CreditRepo.InMemoryStore.List(s.GetContext(), nil, nil)
	s.Len(credits, 1)
}

func (s *AutoCancelServiceSuite) TestPauseWithinAllowanceIsLeftAlone() {
	sub := s.seedExpiredPausedSub("sub-1")
	sub.PausedAt = lo.ToPtr(autoCancelAsOf.AddDate(0, 0, -10))
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	result, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)
	s.Equal(0, result.Processed)

	kept, _ := s.GetStores().SubscriptionRepo.Get(s.GetContext(), "sub-1")
	s.Equal(types.SubscriptionStatusPaused, kept.SubStatus)
}

func (s *AutoCancelServiceSuite) TestPerSubscriptionMaxPauseDaysWins() {
	sub := s.seedExpiredPausedSub("sub-1")
	// 45 days paused but a 60-day personal allowance: not expired.
	sub.MaxPauseDays = 60
	s.NoError(s.GetStores().SubscriptionRepo.Update(s.GetContext(), sub))

	result, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)
	s.Equal(0, result.Processed)
}

func (s *AutoCancelServiceSuite) seedPaidInvoice(id, amount string) {
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), &invoice.Invoice{
		ID:         id,
		GroupID:    "subg-1",
		CustomerID: "cust-1",
		VendorID:   "vend-1",
		CycleStart: autoCancelAsOf.AddDate(0, 0, -7),
		CycleEnd:   autoCancelAsOf.AddDate(0, 0, 6),
		Amount:     decimal.RequireFromString(amount),
		Currency:   "INR",
		InvStatus:  types.InvoiceStatusPaid,
		PaidAt:     lo.ToPtr(autoCancelAsOf.AddDate(0, 0, -7)),
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *AutoCancelServiceSuite) TestConversionNeverExceedsInvoicedAmount() {
	s.seedExpiredPausedSub("sub-1")
	s.seedScheduledOrders("sub-1", 4)
	s.seedPrice("20")
	// The cycle was billed at 50 after credits and discount, so 4×20
	// priced meals still refund at most 50.
	s.seedPaidInvoice("inv-1", "50")

	result, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)
	s.Equal(1, result.Cancelled)
	s.Equal(4, result.CreditsConverted)
	s.True(result.TotalCreditAmount.Equal(decimal.NewFromInt(50)), "got %s", result.TotalCreditAmount)

	credits := s.GetStores().CreditRepo.InMemoryStore.List(s.GetContext(), nil, nil)
	s.Len(credits, 1)
	s.True(credits[0].Amount.Equal(decimal.NewFromInt(50)))
}

func (s *AutoCancelServiceSuite) TestZeroAmountInvoiceCancelsWithoutCredit() {
	s.seedExpiredPausedSub("sub-1")
	s.seedScheduledOrders("sub-1", 4)
	s.seedPrice("20")
	// Fully credit-covered cycle: nothing was collected, nothing to
	// refund.
	s.seedPaidInvoice("inv-1", "0")

	result, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)
	s.Equal(1, result.Cancelled)
	s.Equal(0, result.CreditsConverted)
	s.True(result.TotalCreditAmount.IsZero())
	s.Empty(s.GetStores().CreditRepo.InMemoryStore.List(s.GetContext(), nil, nil))
}

func (s *AutoCancelServiceSuite) TestNoRemainingMealsMeansNoCredit() {
	s.seedExpiredPausedSub("sub-1")
	s.seedPrice("20")

	result, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)
	s.Equal(1, result.Cancelled)
	s.Equal(0, result.CreditsConverted)
	s.True(result.TotalCreditAmount.IsZero())
	s.Empty(s.GetStores().CreditRepo.InMemoryStore.List(s.GetContext(), nil, nil))
}

func (s *AutoCancelServiceSuite) TestMissingPriceCancelsWithoutConversion() {
	s.seedExpiredPausedSub("sub-1")
	s.seedScheduledOrders("sub-1", 3)

	result, err := s.service.Run(s.GetContext(), autoCancelAsOf)
	s.NoError(err)
	s.Equal(1, result.Cancelled)
	s.Equal(0, result.CreditsConverted)
	s.Empty(result.Errors)
}
