package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tiffinly/tiffinly/internal/domain/order"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/testutil"
	"github.com/tiffinly/tiffinly/internal/types"
)

type HolidayServiceSuite struct {
	testutil.BaseServiceTestSuite
	service HolidayService
	params  ServiceParams
}

func TestHolidayService(t *testing.T) {
	suite.Run(t, new(HolidayServiceSuite))
}

func (s *HolidayServiceSuite) SetupTest() {
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
	s.service = NewHolidayService(s.params)
}

func (s *HolidayServiceSuite) seedOrder(id, subID string, date time.Time, slot types.MealSlot) {
	_, err := s.GetStores().OrderRepo.CreateIgnoreDuplicate(s.GetContext(), &order.Order{
		ID:             id,
		SubscriptionID: subID,
		GroupID:        "subg-1",
		InvoiceID:      "inv-1",
		CustomerID:     "cust-1",
		VendorID:       "vend-1",
		ServiceDate:    date,
		Slot:           slot,
		OrderStatus:    types.OrderStatusScheduled,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	})
	s.NoError(err)
}

func (s *HolidayServiceSuite) TestDeclareSlotHolidaySkipsAndCredits() {
	date := types.DateOnly(time.Now().UTC()).AddDate(0, 0, 5)
	s.seedOrder("ord-1", "sub-1", date, types.MealSlotLunch)
	s.seedOrder("ord-2", "sub-2", date, types.MealSlotLunch)
	s.seedOrder("ord-3", "sub-3", date, types.MealSlotDinner)

	result, err := s.service.DeclareHoliday(s.GetContext(), "vend-1", date,
		types.MealSlotLunch, "kitchen maintenance")
	s.NoError(err)
	s.Equal(2, result.OrdersSkipped)
	s.Equal(2, result.CreditsIssued)

	for _, id := range []string{"ord-1", "ord-2"} {
		o, _ := s.GetStores().OrderRepo.Get(s.GetContext(), id)
		s.Equal(types.OrderStatusSkipped, o.OrderStatus)
	}
	dinner, _ := s.GetStores().OrderRepo.Get(s.GetContext(), "ord-3")
	s.Equal(types.OrderStatusScheduled, dinner.OrderStatus)

	credits := s.GetStores().CreditRepo.InMemoryStore.List(s.GetContext(), nil, nil)
	s.Len(credits, 2)
	for _, c := range credits {
		s.Equal(types.CreditSourceHoliday, c.Source)
		s.Equal(1, c.MealCount)
	}
}

func (s *HolidayServiceSuite) TestDeclareFullDayHolidayCoversAllSlots() {
	date := types.DateOnly(time.Now().UTC()).AddDate(0, 0, 5)
	s.seedOrder("ord-1", "sub-1", date, types.MealSlotLunch)
	s.seedOrder("ord-2", "sub-2", date, types.MealSlotDinner)

	result, err := s.service.DeclareHoliday(s.GetContext(), "vend-1", date, "", "diwali")
	s.NoError(err)
	s.Equal(2, result.OrdersSkipped)
	s.Equal("", string(result.Holiday.Slot))

	holidays, err := s.service.ListHolidays(s.GetContext(), "vend-1", date, date)
	s.NoError(err)
	s.Len(holidays, 1)
}

func (s *HolidayServiceSuite) TestDeclareHolidayValidation() {
	date := types.DateOnly(time.Now().UTC()).AddDate(0, 0, 5)

	_, err := s.service.DeclareHoliday(s.GetContext(), "", date, "", "")
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.DeclareHoliday(s.GetContext(), "vend-1", date,
		types.MealSlot("brunch"), "")
	s.Error(err)

	_, err = s.service.DeclareHoliday(s.GetContext(), "vend-1",
		types.DateOnly(time.Now().UTC()).AddDate(0, 0, -2), "", "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
