package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiffinly/tiffinly/internal/api/dto"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	"github.com/tiffinly/tiffinly/internal/service"
)

type PricingHandler struct {
	pricingService service.PricingService
	log            *logger.Logger
}

func NewPricingHandler(pricingService service.PricingService, log *logger.Logger) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		log:            log,
	}
}

// @Summary Preview pricing for a subscription group
// @Description Price the group's next billing cycle without creating an invoice or consuming credits
// @Tags Pricing
// @Accept json
// @Produce json
// @Param preview body dto.PricingPreviewRequest true "Preview parameters"
// @Success 200 {object} dto.PricingPreviewResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /pricing/preview [post]
func (h *PricingHandler) PreviewPricing(c *gin.Context) {
	var req dto.PricingPreviewRequest
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

	refDate, err := req.ParsedDate()
	if err != nil {
		c.Error(err)
		return
	}

	pricing, err := h.pricingService.PreviewPricing(c.Request.Context(), req.GroupID, refDate)
	if err != nil {
		h.log.Errorw("failed to preview pricing", "group_id", req.GroupID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, &dto.PricingPreviewResponse{
		GroupPricing: pricing,
		GroupID:      req.GroupID,
	})
}
