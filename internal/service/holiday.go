package service

import (
	"context"
	"time"

	"github.com/tiffinly/tiffinly/internal/domain/holiday"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// HolidayResult reports a holiday declaration: the record plus how many
// already-scheduled orders were skipped and credited.
type HolidayResult struct {
	Holiday       *holiday.VendorHoliday `json:"holiday"`
	OrdersSkipped int                    `json:"orders_skipped"`
	CreditsIssued int                    `json:"credits_issued"`
}

// HolidayService handles vendor holiday declarations. Future cycles
// exclude the date through the pricing engine and order generator; this
// service compensates the orders that already exist.
type HolidayService interface {
	// DeclareHoliday records a (date, slot?) holiday for a vendor,
	// skips the scheduled orders it covers and issues one meal credit
	// per skipped order. Empty slot covers the whole day.
	DeclareHoliday(ctx context.Context, vendorID string, date time.Time, slot types.MealSlot, reason string) (*HolidayResult, error)

	// ListHolidays lists a vendor's holidays within [from, to].
	ListHolidays(ctx context.Context, vendorID string, from, to time.Time) ([]*holiday.VendorHoliday, error)
}

type holidayService struct {
	ServiceParams
	creditSvc CreditService
}

// NewHolidayService creates a new holiday service
func NewHolidayService(params ServiceParams) HolidayService {
	return &holidayService{
		ServiceParams: params,
		creditSvc:     NewCreditService(params),
	}
}

func (s *holidayService) DeclareHoliday(ctx context.Context, vendorID string, date time.Time, slot types.MealSlot, reason string) (*HolidayResult, error) {
	if vendorID == "" {
		return nil, ierr.NewError("vendor_id is required").
			WithHint("Vendor id is required").
			Mark(ierr.ErrValidation)
	}
	if slot != "" {
		if err := slot.Validate(); err != nil {
			return nil, err
		}
	}
	date = types.DateOnly(date)
	if date.Before(types.DateOnly(time.Now().UTC())) {
		return nil, ierr.NewError("cannot declare a holiday in the past").
			WithHint("Holiday date must be today or later").
			WithReportableDetails(map[string]interface{}{"date": date}).
			Mark(ierr.ErrValidation)
	}

	result := &HolidayResult{}
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		h := &holiday.VendorHoliday{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_VENDOR_HOLIDAY),
			VendorID:  vendorID,
			Date:      date,
			Slot:      slot,
			Reason:    reason,
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		if err := s.HolidayRepo.Create(txCtx, h); err != nil {
			return err
		}
		result.Holiday = h

		orders, err := s.OrderRepo.ListScheduledByVendorDate(txCtx, vendorID, date, slot)
		if err != nil {
			return err
		}
		for _, o := range orders {
			o.OrderStatus = types.OrderStatusSkipped
			if err := s.OrderRepo.Update(txCtx, o); err != nil {
				return err
			}
			result.OrdersSkipped++

			if _, err := s.creditSvc.IssueMealCredit(txCtx, o.SubscriptionID,
				o.CustomerID, types.CreditSourceHoliday, 1); err != nil {
				return err
			}
			result.CreditsIssued++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("declared vendor holiday",
		"vendor_id", vendorID,
		"date", date,
		"slot", slot,
		"orders_skipped", result.OrdersSkipped)
	return result, nil
}

func (s *holidayService) ListHolidays(ctx context.Context, vendorID string, from, to time.Time) ([]*holiday.VendorHoliday, error) {
	return s.HolidayRepo.ListByVendorBetween(ctx, vendorID, from, to)
}
