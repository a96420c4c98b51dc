package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tiffinly/tiffinly/internal/domain/credit"
	"github.com/tiffinly/tiffinly/internal/testutil"
	"github.com/tiffinly/tiffinly/internal/types"
)

type CreditServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CreditService
	params  ServiceParams
}

func TestCreditService(t *testing.T) {
	suite.Run(t, new(CreditServiceSuite))
}

func (s *CreditServiceSuite) SetupTest() {
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
	s.service = NewCreditService(s.params)
}

func (s *CreditServiceSuite) seedCredit(id string, expiresAt time.Time, meals int) {
	s.NoError(s.GetStores().CreditRepo.Create(s.GetContext(), &credit.Credit{
		ID:             id,
		CustomerID:     "cust-1",
		SubscriptionID: lo.ToPtr("sub-1"),
		Type:           types.CreditTypeMeal,
		Source:         types.CreditSourceSkip,
		MealCount:      meals,
		ExpiresAt:      lo.ToPtr(expiresAt),
		CreditStatus:   types.CreditStatusActive,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *CreditServiceSuite) TestIssueMealCreditSetsConfiguredExpiry() {
	c, err := s.service.IssueMealCredit(s.GetContext(), "sub-1", "cust-1", types.CreditSourceSkip, 1)
	s.NoError(err)
	s.Equal(types.CreditTypeMeal, c.Type)
	s.Equal(types.CreditStatusActive, c.CreditStatus)
	s.NotNil(c.ExpiresAt)

	wantExpiry := time.Now().UTC().AddDate(0, 0, s.GetConfig().Billing.CreditExpiryDays)
	s.WithinDuration(wantExpiry, *c.ExpiresAt, time.Minute)
}

func (s *CreditServiceSuite) TestIssueMealCreditRejectsBadInput() {
	_, err := s.service.IssueMealCredit(s.GetContext(), "sub-1", "cust-1", types.CreditSourceSkip, 0)
	s.Error(err)

	_, err = s.service.IssueMealCredit(s.GetContext(), "sub-1", "cust-1", types.CreditSource("refund"), 1)
	s.Error(err)
}

func (s *CreditServiceSuite) TestSelectCreditsOldestExpiryFirst() {
	asOf := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.seedCredit("cred-late", asOf.AddDate(0, 2, 0), 1)
	s.seedCredit("cred-early", asOf.AddDate(0, 0, 10), 1)
	s.seedCredit("cred-mid", asOf.AddDate(0, 1, 0), 1)

	selection, err := s.service.SelectCredits(s.GetContext(), "sub-1", 2, asOf)
	s.NoError(err)
	s.Equal(2, selection.Meals)
	s.Equal([]string{"cred-early", "cred-mid"}, selection.CreditIDs)
}

func (s *CreditServiceSuite) TestSelectCreditsSkipsExpiredAndConsumed() {
	asOf := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.seedCredit("cred-expired", asOf.AddDate(0, 0, -1), 1)
	s.seedCredit("cred-ok", asOf.AddDate(0, 1, 0), 1)
	s.NoError(s.GetStores().CreditRepo.MarkConsumed(
		s.GetContext(), []string{"cred-expired"}, "", time.Time{}))

	// Re-seed an expired-but-active credit after consuming the first.
	s.seedCredit("cred-stale", asOf.AddDate(0, 0, -5), 1)

	selection, err := s.service.SelectCredits(s.GetContext(), "sub-1", 5, asOf)
	s.NoError(err)
	s.Equal([]string{"cred-ok"}, selection.CreditIDs)
}

func (s *CreditServiceSuite) TestSelectCreditsNeverOvershoots() {
	asOf := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.seedCredit("cred-big", asOf.AddDate(0, 0, 5), 3)
	s.seedCredit("cred-small", asOf.AddDate(0, 1, 0), 1)

	// Needing 2, the 3-meal credit would overshoot and is passed over.
	selection, err := s.service.SelectCredits(s.GetContext(), "sub-1", 2, asOf)
	s.NoError(err)
	s.Equal(1, selection.Meals)
	s.Equal([]string{"cred-small"}, selection.CreditIDs)
}

func (s *CreditServiceSuite) TestConsumeCreditsCannotDoubleSpend() {
	asOf := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.seedCredit("cred-1", asOf.AddDate(0, 1, 0), 1)

	s.NoError(s.service.ConsumeCredits(s.GetContext(), []string{"cred-1"}, "inv-1"))

	err := s.service.ConsumeCredits(s.GetContext(), []string{"cred-1"}, "inv-2")
	s.Error(err)

	c, _ := s.GetStores().CreditRepo.Get(s.GetContext(), "cred-1")
	s.Equal("inv-1", lo.FromPtr(c.InvoiceID))
}

func (s *CreditServiceSuite) TestExpireDueFlipsOnlyPastExpiry() {
	asOf := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.seedCredit("cred-past", asOf.AddDate(0, 0, -1), 1)
	s.seedCredit("cred-future", asOf.AddDate(0, 0, 1), 1)

	expired, err := s.service.ExpireDue(s.GetContext(), asOf)
	s.NoError(err)
	s.Equal(1, expired)

	past, _ := s.GetStores().CreditRepo.Get(s.GetContext(), "cred-past")
	s.Equal(types.CreditStatusExpired, past.CreditStatus)
	future, _ := s.GetStores().CreditRepo.Get(s.GetContext(), "cred-future")
	s.Equal(types.CreditStatusActive, future.CreditStatus)
}

func (s *CreditServiceSuite) TestIssueMonetaryCreditRoundsAmount() {
	c, err := s.service.IssueMonetaryCredit(s.GetContext(), "cust-1",
		types.CreditSourceCancellation, decimal.RequireFromString("79.999"))
	s.NoError(err)
	s.Equal(types.CreditTypeMonetary, c.Type)
	s.Nil(c.SubscriptionID)
	s.True(c.Amount.Equal(decimal.RequireFromString("80")), "got %s", c.Amount)
}
