package dto

import (
	"time"

	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/service"
	"github.com/tiffinly/tiffinly/internal/validator"
)

// PricingPreviewRequest prices a group's next cycle without billing it.
type PricingPreviewRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	// Date optionally anchors the previewed cycle (YYYY-MM-DD);
	// defaults to the group's renewal date.
	Date string `json:"date,omitempty"`
}

func (r *PricingPreviewRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ParsedDate returns the anchor date, zero when unset.
func (r *PricingPreviewRequest) ParsedDate() (time.Time, error) {
	if r.Date == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("Date must be in YYYY-MM-DD format").
			WithReportableDetails(map[string]interface{}{"date": r.Date}).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}

// PricingPreviewResponse is the priced cycle.
type PricingPreviewResponse struct {
	*service.GroupPricing
	GroupID string `json:"group_id"`
}
