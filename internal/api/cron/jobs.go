package cron

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiffinly/tiffinly/internal/api/dto"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	"github.com/tiffinly/tiffinly/internal/service"
	"github.com/tiffinly/tiffinly/internal/types"
)

// JobsCronHandler exposes the billing batch jobs over HTTP for the
// external scheduler. Every invocation is recorded through the tracker;
// per-item failures come back inside the result, never as an HTTP error.
type JobsCronHandler struct {
	tracker       service.JobTracker
	renewalSvc    service.RenewalService
	retrySvc      service.PaymentRetryService
	orderGenSvc   service.OrderGenerationService
	autoCancelSvc service.AutoCancelService
	creditSvc     service.CreditService
	logger        *logger.Logger
}

// NewJobsCronHandler creates a new jobs cron handler
func NewJobsCronHandler(params service.ServiceParams) *JobsCronHandler {
	return &JobsCronHandler{
		tracker:       service.NewJobTracker(params),
		renewalSvc:    service.NewRenewalService(params),
		retrySvc:      service.NewPaymentRetryService(params),
		orderGenSvc:   service.NewOrderGenerationService(params),
		autoCancelSvc: service.NewAutoCancelService(params),
		creditSvc:     service.NewCreditService(params),
		logger:        logger.GetLogger(),
	}
}

// runDate reads the optional ?date=YYYY-MM-DD query param.
func runDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("date must be in YYYY-MM-DD format").
			WithReportableDetails(map[string]interface{}{"date": raw}).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}

// RunRenewal handles POST /jobs/renewal
func (h *JobsCronHandler) RunRenewal(c *gin.Context) {
	date, err := runDate(c)
	if err != nil {
		c.Error(err)
		return
	}
	cursor := c.Query("cursor")
	h.logger.Infow("starting renewal cron job", "run_date", date, "cursor", cursor)

	var result *service.RenewalResult
	_, err = h.tracker.Track(c.Request.Context(), types.JobTypeRenewal,
		func(ctx context.Context) (map[string]interface{}, error) {
			var runErr error
			result, runErr = h.renewalSvc.Run(ctx, date, cursor)
			if runErr != nil {
				return nil, runErr
			}
			return result.Payload(), nil
		})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(result))
}

// RunPaymentRetry handles POST /jobs/payment-retry
func (h *JobsCronHandler) RunPaymentRetry(c *gin.Context) {
	h.logger.Infow("starting payment retry cron job")

	var result *service.PaymentRetryResult
	_, err := h.tracker.Track(c.Request.Context(), types.JobTypePaymentRetry,
		func(ctx context.Context) (map[string]interface{}, error) {
			var runErr error
			result, runErr = h.retrySvc.Run(ctx)
			if runErr != nil {
				return nil, runErr
			}
			return result.Payload(), nil
		})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(result))
}

// RunOrderGeneration handles POST /jobs/generate-orders
func (h *JobsCronHandler) RunOrderGeneration(c *gin.Context) {
	h.logger.Infow("starting order generation cron job")

	var result *service.OrderGenerationResult
	_, err := h.tracker.Track(c.Request.Context(), types.JobTypeOrderGeneration,
		func(ctx context.Context) (map[string]interface{}, error) {
			var runErr error
			result, runErr = h.orderGenSvc.Run(ctx)
			if runErr != nil {
				return nil, runErr
			}
			return result.Payload(), nil
		})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(result))
}

// RunAutoCancel handles GET/POST /jobs/auto-cancel-paused
func (h *JobsCronHandler) RunAutoCancel(c *gin.Context) {
	date, err := runDate(c)
	if err != nil {
		c.Error(err)
		return
	}
	h.logger.Infow("starting auto-cancel cron job", "as_of", date)

	var result *service.AutoCancelResult
	_, err = h.tracker.Track(c.Request.Context(), types.JobTypeAutoCancel,
		func(ctx context.Context) (map[string]interface{}, error) {
			var runErr error
			result, runErr = h.autoCancelSvc.Run(ctx, date)
			if runErr != nil {
				return nil, runErr
			}
			return result.Payload(), nil
		})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(result))
}

// RunCreditExpiry handles POST /jobs/expire-credits
func (h *JobsCronHandler) RunCreditExpiry(c *gin.Context) {
	date, err := runDate(c)
	if err != nil {
		c.Error(err)
		return
	}
	h.logger.Infow("starting credit expiry cron job", "as_of", date)

	var expired int
	_, err = h.tracker.Track(c.Request.Context(), types.JobTypeCreditExpiry,
		func(ctx context.Context) (map[string]interface{}, error) {
			var runErr error
			expired, runErr = h.creditSvc.ExpireDue(ctx, date)
			if runErr != nil {
				return nil, runErr
			}
			return map[string]interface{}{"expired": expired}, nil
		})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(gin.H{"expired": expired}))
}
