package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiffinly/tiffinly/internal/api/dto"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	"github.com/tiffinly/tiffinly/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	log                 *logger.Logger
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		log:                 log,
	}
}

// @Summary Get a subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sub, err := h.subscriptionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, &dto.SubscriptionResponse{Subscription: sub})
}

// @Summary Pause a subscription
// @Description Pause an active subscription; paused subscriptions are excluded from billing and order generation
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/pause [post]
func (h *SubscriptionHandler) PauseSubscription(c *gin.Context) {
	id := c.Param("id")
	sub, err := h.subscriptionService.Pause(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to pause subscription", "subscription_id", id, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, &dto.SubscriptionResponse{Subscription: sub})
}

// @Summary Resume a paused subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/resume [post]
func (h *SubscriptionHandler) ResumeSubscription(c *gin.Context) {
	id := c.Param("id")
	sub, err := h.subscriptionService.Resume(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to resume subscription", "subscription_id", id, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, &dto.SubscriptionResponse{Subscription: sub})
}

// @Summary Cancel a subscription
// @Description Cancel the subscription and drop its remaining scheduled orders without compensation
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	id := c.Param("id")
	sub, err := h.subscriptionService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to cancel subscription", "subscription_id", id, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, &dto.SubscriptionResponse{Subscription: sub})
}

// @Summary Skip a meal
// @Description Skip one scheduled meal date and receive a meal credit for a future cycle
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param skip body dto.SkipRequest true "Skip parameters"
// @Success 200 {object} dto.SkipResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/{id}/skip [post]
func (h *SubscriptionHandler) SkipMeal(c *gin.Context) {
	var req dto.SkipRequest
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

	id := c.Param("id")
	result, err := h.subscriptionService.Skip(c.Request.Context(), id, date)
	if err != nil {
		h.log.Errorw("failed to skip meal", "subscription_id", id, "date", req.Date, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, &dto.SkipResponse{SkipResult: result})
}
