package dto

import (
	"time"

	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/service"
	"github.com/tiffinly/tiffinly/internal/types"
	"github.com/tiffinly/tiffinly/internal/validator"
)

// DeclareHolidayRequest declares a vendor no-service (date, slot?).
type DeclareHolidayRequest struct {
	Date string `json:"date" validate:"required"`
	// Slot empty means the whole day.
	Slot   string `json:"slot,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (r *DeclareHolidayRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ParsedDate returns the holiday date.
func (r *DeclareHolidayRequest) ParsedDate() (time.Time, error) {
	d, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("Date must be in YYYY-MM-DD format").
			WithReportableDetails(map[string]interface{}{"date": r.Date}).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}

// MealSlot returns the typed slot.
func (r *DeclareHolidayRequest) MealSlot() types.MealSlot {
	return types.MealSlot(r.Slot)
}

// DeclareHolidayResponse reports the declaration outcome.
type DeclareHolidayResponse struct {
	*service.HolidayResult
}
