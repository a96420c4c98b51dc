package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tiffinly/tiffinly/internal/api/cron"
	v1 "github.com/tiffinly/tiffinly/internal/api/v1"
	"github.com/tiffinly/tiffinly/internal/config"
	"github.com/tiffinly/tiffinly/internal/logger"
	"github.com/tiffinly/tiffinly/internal/rest/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Pricing      *v1.PricingHandler
	Subscription *v1.SubscriptionHandler
	Holiday      *v1.HolidayHandler
	Jobs         *cron.JobsCronHandler
}

// NewRouter builds the gin engine with the standard middleware chain
// and mounts the public v1 routes and the secret-guarded job routes.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(log),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1Routes := router.Group("/v1")
	{
		pricing := v1Routes.Group("/pricing")
		{
			pricing.POST("/preview", handlers.Pricing.PreviewPricing)
		}

		subscriptions := v1Routes.Group("/subscriptions")
		{
			subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
			subscriptions.POST("/:id/pause", handlers.Subscription.PauseSubscription)
			subscriptions.POST("/:id/resume", handlers.Subscription.ResumeSubscription)
			subscriptions.POST("/:id/cancel", handlers.Subscription.CancelSubscription)
			subscriptions.POST("/:id/skip", handlers.Subscription.SkipMeal)
		}

		vendors := v1Routes.Group("/vendors")
		{
			vendors.POST("/:id/holidays", handlers.Holiday.DeclareHoliday)
			vendors.GET("/:id/holidays", handlers.Holiday.ListHolidays)
		}
	}

	// Job routes are driven by the external scheduler and carry the
	// shared cron secret instead of user auth.
	// Schedulers differ on the verb they send, so every job route
	// accepts both GET and POST.
	jobs := router.Group("/jobs", middleware.CronAuthMiddleware(cfg))
	{
		jobs.POST("/renewal", handlers.Jobs.RunRenewal)
		jobs.GET("/renewal", handlers.Jobs.RunRenewal)
		jobs.POST("/payment-retry", handlers.Jobs.RunPaymentRetry)
		jobs.GET("/payment-retry", handlers.Jobs.RunPaymentRetry)
		jobs.POST("/generate-orders", handlers.Jobs.RunOrderGeneration)
		jobs.GET("/generate-orders", handlers.Jobs.RunOrderGeneration)
		jobs.POST("/auto-cancel-paused", handlers.Jobs.RunAutoCancel)
		jobs.GET("/auto-cancel-paused", handlers.Jobs.RunAutoCancel)
		jobs.POST("/expire-credits", handlers.Jobs.RunCreditExpiry)
		jobs.GET("/expire-credits", handlers.Jobs.RunCreditExpiry)
	}

	return router
}
