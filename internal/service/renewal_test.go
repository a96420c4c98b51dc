package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tiffinly/tiffinly/internal/domain/credit"
	"github.com/tiffinly/tiffinly/internal/domain/price"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	"github.com/tiffinly/tiffinly/internal/testutil"
	"github.com/tiffinly/tiffinly/internal/types"
)

type RenewalServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RenewalService
	params  ServiceParams
}

func TestRenewalService(t *testing.T) {
	suite.Run(t, new(RenewalServiceSuite))
}

func (s *RenewalServiceSuite) SetupTest() {
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
	s.service = NewRenewalService(s.params)
}

var renewalRunDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// seedDueGroup creates a weekly group due on the run date with one
// active Mon-Fri lunch subscription and an enabled price.
func (s *RenewalServiceSuite) seedDueGroup(n int) {
	ctx := s.GetContext()
	s.NoError(s.GetStores().PriceRepo.Create(ctx, &price.VendorPrice{
		ID:           "vprc-lunch",
		VendorID:     "vend-1",
		Slot:         types.MealSlotLunch,
		PricePerMeal: decimal.NewFromInt(100),
		Currency:     "INR",
		Enabled:      true,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}))
	for i := 0; i < n; i++ {
		groupID := fmt.Sprintf("subg-%02d", i)
		s.NoError(s.GetStores().SubscriptionGroupRepo.Create(ctx, &subscription.SubscriptionGroup{
			ID:            groupID,
			CustomerID:    fmt.Sprintf("cust-%02d", i),
			VendorID:      "vend-1",
			BillingPeriod: types.BillingPeriodWeekly,
			RenewalDate:   renewalRunDate,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}))
		s.NoError(s.GetStores().SubscriptionRepo.Create(ctx, &subscription.Subscription{
			ID:         fmt.Sprintf("sub-%02d", i),
			GroupID:    groupID,
			CustomerID: fmt.Sprintf("cust-%02d", i),
			VendorID:   "vend-1",
			Slot:       types.MealSlotLunch,
			Weekdays:   types.Weekdays{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			SubStatus:  types.SubscriptionStatusActive,
			BaseModel:  types.GetDefaultBaseModel(ctx),
		}))
	}
}

func (s *RenewalServiceSuite) TestRunCreatesOneInvoicePerDueGroup() {
	s.seedDueGroup(10)

	result, err := s.service.Run(s.GetContext(), renewalRunDate, "")
	s.NoError(err)
	s.Equal(10, result.Processed)
	s.Equal(10, result.InvoicesCreated)
	s.Empty(result.Errors)
	s.False(result.HasMore)

	// 2024-01-15 is a Monday: the new cycle starts on it.
	inv, err := s.GetStores().InvoiceRepo.GetByGroupAndCycleStart(
		s.GetContext(), "subg-00", renewalRunDate)
	s.NoError(err)
	s.Equal(time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), inv.CycleEnd)
	s.Equal(types.InvoiceStatusPending, inv.InvStatus)
	s.True(inv.Amount.Equal(decimal.NewFromInt(500)), "got %s", inv.Amount)

	// Renewal date advanced to the cycle after.
	group, err := s.GetStores().SubscriptionGroupRepo.Get(s.GetContext(), "subg-00")
	s.NoError(err)
	s.Equal(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), group.RenewalDate)
}

func (s *RenewalServiceSuite) TestRunTwiceIsIdempotent() {
	s.seedDueGroup(10)

	first, err := s.service.Run(s.GetContext(), renewalRunDate, "")
	s.NoError(err)
	s.Equal(10, first.InvoicesCreated)

	// Advanced renewal dates mean nothing is due on a second pass.
	second, err := s.service.Run(s.GetContext(), renewalRunDate, "")
	s.NoError(err)
	s.Equal(0, second.Processed)
	s.Equal(0, second.InvoicesCreated)

	// Even with the renewal date forced back, the existence check skips.
	group, _ := s.GetStores().SubscriptionGroupRepo.Get(s.GetContext(), "subg-00")
	group.RenewalDate = renewalRunDate
	s.NoError(s.GetStores().SubscriptionGroupRepo.Update(s.GetContext(), group))

	third, err := s.service.Run(s.GetContext(), renewalRunDate, "")
	s.NoError(err)
	s.Equal(1, third.Processed)
	s.Equal(0, third.InvoicesCreated)
	s.Equal(1, third.Skipped)
}

func (s *RenewalServiceSuite) TestRunConsumesSelectedCredits() {
	s.seedDueGroup(1)
	expiry := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.NoError(s.GetStores().CreditRepo.Create(s.GetContext(), &credit.Credit{
		ID:             "cred-1",
		CustomerID:     "cust-00",
		SubscriptionID: lo.ToPtr("sub-00"),
		Type:           types.CreditTypeMeal,
		Source:         types.CreditSourceSkip,
		MealCount:      1,
		ExpiresAt:      lo.ToPtr(expiry),
		CreditStatus:   types.CreditStatusActive,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}))

	result, err := s.service.Run(s.GetContext(), renewalRunDate, "")
	s.NoError(err)
	s.Equal(1, result.InvoicesCreated)

	inv, err := s.GetStores().InvoiceRepo.GetByGroupAndCycleStart(
		s.GetContext(), "subg-00", renewalRunDate)
	s.NoError(err)
	s.Equal(1, inv.CreditsApplied)
	s.True(inv.Amount.Equal(decimal.NewFromInt(400)), "got %s", inv.Amount)

	c, err := s.GetStores().CreditRepo.Get(s.GetContext(), "cred-1")
	s.NoError(err)
	s.Equal(types.CreditStatusConsumed, c.CreditStatus)
	s.Equal(inv.ID, lo.FromPtr(c.InvoiceID))
}

func (s *RenewalServiceSuite) TestBatchingWithCursor() {
	s.seedDueGroup(5)
	s.GetConfig().Billing.RenewalBatchSize = 2

	first, err := s.service.Run(s.GetContext(), renewalRunDate, "")
	s.NoError(err)
	s.Equal(2, first.Processed)
	s.True(first.HasMore)
	s.Equal("subg-01", first.Cursor)

	second, err := s.service.Run(s.GetContext(), renewalRunDate, first.Cursor)
	s.NoError(err)
	s.Equal(2, second.Processed)
	s.True(second.HasMore)

	third, err := s.service.Run(s.GetContext(), renewalRunDate, second.Cursor)
	s.NoError(err)
	s.Equal(1, third.Processed)
	s.False(third.HasMore)
	s.Empty(third.Cursor)
}

func (s *RenewalServiceSuite) TestGroupWithoutPriceIsCapturedNotFatal() {
	s.seedDueGroup(2)
	// Second group gets a breakfast sub with no price configured.
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), &subscription.Subscription{
		ID:         "sub-xx",
		GroupID:    "subg-01",
		CustomerID: "cust-01",
		VendorID:   "vend-1",
		Slot:       types.MealSlotBreakfast,
		Weekdays:   types.Weekdays{time.Monday},
		SubStatus:  types.SubscriptionStatusActive,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}))

	result, err := s.service.Run(s.GetContext(), renewalRunDate, "")
	s.NoError(err)
	s.Equal(2, result.Processed)
	s.Equal(1, result.InvoicesCreated)
	s.Len(result.Errors, 1)
	s.Contains(result.Errors[0], "subg-01")
}
