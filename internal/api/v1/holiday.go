package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiffinly/tiffinly/internal/api/dto"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	"github.com/tiffinly/tiffinly/internal/service"
)

type HolidayHandler struct {
	holidayService service.HolidayService
	log            *logger.Logger
}

func NewHolidayHandler(holidayService service.HolidayService, log *logger.Logger) *HolidayHandler {
	return &HolidayHandler{
		holidayService: holidayService,
		log:            log,
	}
}

// @Summary Declare a vendor holiday
// @Description Declare a no-service date (optionally a single slot) for a vendor; covered scheduled orders are skipped and credited
// @Tags Vendors
// @Accept json
// @Produce json
// @Param id path string true "Vendor ID"
// @Param holiday body dto.DeclareHolidayRequest true "Holiday declaration"
// @Success 201 {object} dto.DeclareHolidayResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /vendors/{id}/holidays [post]
func (h *HolidayHandler) DeclareHoliday(c *gin.Context) {
	var req dto.DeclareHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	date, err := req.ParsedDate()
	if err != nil {
		c.Error(err)
		return
	}

	vendorID := c.Param("id")
	result, err := h.holidayService.DeclareHoliday(c.Request.Context(), vendorID, date, req.MealSlot(), req.Reason)
	if err != nil {
		h.log.Errorw("failed to declare holiday", "vendor_id", vendorID, "date", req.Date, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, &dto.DeclareHolidayResponse{HolidayResult: result})
}

// @Summary List vendor holidays
// @Tags Vendors
// @Produce json
// @Param id path string true "Vendor ID"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} []holiday.VendorHoliday
// @Failure 400 {object} ierr.ErrorResponse
// @Router /vendors/{id}/holidays [get]
func (h *HolidayHandler) ListHolidays(c *gin.Context) {
	from, err := rangeDate(c.Query("from"), time.Now().UTC().AddDate(0, -1, 0))
	if err != nil {
		c.Error(err)
		return
	}
	to, err := rangeDate(c.Query("to"), time.Now().UTC().AddDate(0, 1, 0))
	if err != nil {
		c.Error(err)
		return
	}

	holidays, err := h.holidayService.ListHolidays(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, holidays)
}

func rangeDate(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("Dates must be in YYYY-MM-DD format").
			WithReportableDetails(map[string]interface{}{"date": raw}).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}
