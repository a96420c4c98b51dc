package types

import (
	"github.com/samber/lo"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
)

// CreditSource records which flow issued a credit.
type CreditSource string

const (
	// CreditSourceSkip is a customer-initiated skip of a scheduled meal.
	CreditSourceSkip CreditSource = "skip"
	// CreditSourceHoliday is a vendor-declared holiday on a scheduled day.
	CreditSourceHoliday CreditSource = "holiday"
	// CreditSourceCancellation is unused prepaid balance converted when a
	// paused subscription is auto-cancelled.
	CreditSourceCancellation CreditSource = "cancellation"
)

func (s CreditSource) Validate() error {
	allowed := []CreditSource{CreditSourceSkip, CreditSourceHoliday, CreditSourceCancellation}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid credit source: %s", s).
			WithHint("Credit source must be skip, holiday or cancellation").
			WithReportableDetails(map[string]interface{}{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
