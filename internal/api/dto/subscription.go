package dto

import (
	"time"

	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/service"
	"github.com/tiffinly/tiffinly/internal/validator"
)

// SubscriptionResponse is the wire shape of a subscription.
type SubscriptionResponse struct {
	*subscription.Subscription
}

// SkipRequest skips one scheduled meal date.
type SkipRequest struct {
	Date string `json:"date" validate:"required"`
}

func (r *SkipRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ParsedDate returns the skip date.
func (r *SkipRequest) ParsedDate() (time.Time, error) {
	d, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("Date must be in YYYY-MM-DD format").
			WithReportableDetails(map[string]interface{}{"date": r.Date}).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}

// SkipResponse reports the skip outcome.
type SkipResponse struct {
	*service.SkipResult
}
