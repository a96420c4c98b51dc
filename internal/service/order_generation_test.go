package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/tiffinly/tiffinly/internal/domain/holiday"
	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	"github.com/tiffinly/tiffinly/internal/testutil"
	"github.com/tiffinly/tiffinly/internal/types"
)

type OrderGenerationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service OrderGenerationService
	params  ServiceParams
}

func TestOrderGenerationService(t *testing.T) {
	suite.Run(t, new(OrderGenerationServiceSuite))
}

func (s *OrderGenerationServiceSuite) SetupTest() {
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
	s.service = NewOrderGenerationService(s.params)
}

// seedPaidInvoice covers the week 2024-01-15 (Mon) .. 2024-01-21 (Sun).
func (s *OrderGenerationServiceSuite) seedPaidInvoice(id string) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:         id,
		GroupID:    "subg-1",
		CustomerID: "cust-1",
		VendorID:   "vend-1",
		CycleStart: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CycleEnd:   time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC),
		Subtotal:   decimal.NewFromInt(500),
		Amount:     decimal.NewFromInt(500),
		Currency:   "INR",
		InvStatus:  types.InvoiceStatusPaid,
		PaidAt:     lo.ToPtr(time.Now().UTC()),
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *OrderGenerationServiceSuite) seedSub(id string, slot types.MealSlot, weekdays types.Weekdays, status types.SubscriptionStatus) {
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), &subscription.Subscription{
		ID:         id,
		GroupID:    "subg-1",
		CustomerID: "cust-1",
		VendorID:   "vend-1",
		Slot:       slot,
		Weekdays:   weekdays,
		SubStatus:  status,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *OrderGenerationServiceSuite) TestExpandsPaidInvoiceIntoOrders() {
	inv := s.seedPaidInvoice("inv-1")
	s.seedSub("sub-1", types.MealSlotLunch,
		types.Weekdays{time.Monday, time.Wednesday, time.Friday},
		types.SubscriptionStatusActive)
	s.seedSub("sub-2", types.MealSlotDinner,
		types.Weekdays{time.Saturday},
		types.SubscriptionStatusActive)

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(4, result.OrdersCreated)
	s.Empty(result.Errors)

	count, err := s.GetStores().OrderRepo.CountByInvoice(s.GetContext(), "inv-1")
	s.NoError(err)
	s.Equal(4, count)

	// Bookkeeping set so the next run skips this invoice.
	updated, _ := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NotNil(updated.OrdersGeneratedAt)

	o, err := s.GetStores().OrderRepo.GetScheduled(s.GetContext(), "sub-1",
		time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), types.MealSlotLunch)
	s.NoError(err)
	s.Equal("inv-1", o.InvoiceID)
	s.Equal(types.OrderStatusScheduled, o.OrderStatus)
}

func (s *OrderGenerationServiceSuite) TestReRunCreatesNothingTwice() {
	s.seedPaidInvoice("inv-1")
	s.seedSub("sub-1", types.MealSlotLunch,
		types.Weekdays{time.Monday, time.Wednesday},
		types.SubscriptionStatusActive)

	first, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(2, first.OrdersCreated)

	// Clear the bookkeeping to force a reprocess of the same invoice.
	inv, _ := s.GetStores().InvoiceRepo.Get(s.GetContext(), "inv-1")
	inv.OrdersGeneratedAt = nil
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	second, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(0, second.OrdersCreated)
	s.Equal(2, second.Duplicates)

	count, _ := s.GetStores().OrderRepo.CountByInvoice(s.GetContext(), "inv-1")
	s.Equal(2, count)
}

func (s *OrderGenerationServiceSuite) TestHolidaysAreSkipped() {
	s.seedPaidInvoice("inv-1")
	s.seedSub("sub-1", types.MealSlotLunch,
		types.Weekdays{time.Monday, time.Wednesday, time.Friday},
		types.SubscriptionStatusActive)
	s.NoError(s.GetStores().HolidayRepo.Create(s.GetContext(), &holiday.VendorHoliday{
		ID:        "vhol-1",
		VendorID:  "vend-1",
		Date:      time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(2, result.OrdersCreated)
	s.Equal(1, result.Skipped)

	_, err = s.GetStores().OrderRepo.GetScheduled(s.GetContext(), "sub-1",
		time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), types.MealSlotLunch)
	s.Error(err)
}

func (s *OrderGenerationServiceSuite) TestInactiveSubscriptionsGetNoOrders() {
	s.seedPaidInvoice("inv-1")
	s.seedSub("sub-1", types.MealSlotLunch, types.Weekdays{time.Monday},
		types.SubscriptionStatusActive)
	s.seedSub("sub-2", types.MealSlotDinner, types.Weekdays{time.Monday},
		types.SubscriptionStatusPaused)

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.OrdersCreated)
}

func (s *OrderGenerationServiceSuite) TestPendingInvoicesAreIgnored() {
	inv := s.seedPaidInvoice("inv-1")
	inv.InvStatus = types.InvoiceStatusPending
	inv.PaidAt = nil
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	result, err := s.service.Run(s.GetContext())
	s.NoError(err)
	s.Equal(0, result.Processed)
}
