package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/tiffinly/tiffinly/internal/api"
	"github.com/tiffinly/tiffinly/internal/api/cron"
	v1 "github.com/tiffinly/tiffinly/internal/api/v1"
	"github.com/tiffinly/tiffinly/internal/config"
	"github.com/tiffinly/tiffinly/internal/domain/coupon"
	"github.com/tiffinly/tiffinly/internal/domain/credit"
	"github.com/tiffinly/tiffinly/internal/domain/holiday"
	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	"github.com/tiffinly/tiffinly/internal/domain/jobrun"
	"github.com/tiffinly/tiffinly/internal/domain/order"
	"github.com/tiffinly/tiffinly/internal/domain/price"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	"github.com/tiffinly/tiffinly/internal/logger"
	"github.com/tiffinly/tiffinly/internal/payment/razorpay"
	"github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/repository"
	"github.com/tiffinly/tiffinly/internal/service"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			newPool,
			postgres.NewClient,
			func(c *postgres.Client) postgres.IClient { return c },

			repository.NewSubscriptionGroupRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewCreditRepository,
			repository.NewOrderRepository,
			repository.NewPriceRepository,
			repository.NewHolidayRepository,
			repository.NewCouponRepository,
			repository.NewJobRunRepository,

			razorpay.NewGateway,
			newServiceParams,

			service.NewPricingService,
			service.NewSubscriptionService,
			service.NewHolidayService,

			newHandlers,
			newRouter,
		),
		fx.Invoke(
			initSentry,
			migrateDatabase,
			startServer,
		),
	)
	app.Run()
}

func newPool(cfg *config.Configuration) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return postgres.NewPool(ctx, cfg)
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	db postgres.IClient,
	gateway razorpay.Gateway,
	groupRepo subscription.GroupRepository,
	subRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	creditRepo credit.Repository,
	orderRepo order.Repository,
	priceRepo price.Repository,
	holidayRepo holiday.Repository,
	couponRepo coupon.Repository,
	jobRunRepo jobrun.Repository,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:         log,
		Config:         cfg,
		DB:             db,
		GroupRepo:      groupRepo,
		SubRepo:        subRepo,
		InvoiceRepo:    invoiceRepo,
		CreditRepo:     creditRepo,
		OrderRepo:      orderRepo,
		PriceRepo:      priceRepo,
		HolidayRepo:    holidayRepo,
		CouponRepo:     couponRepo,
		JobRunRepo:     jobRunRepo,
		PaymentGateway: gateway,
	}
}

func newHandlers(
	params service.ServiceParams,
	pricingSvc service.PricingService,
	subscriptionSvc service.SubscriptionService,
	holidaySvc service.HolidayService,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Pricing:      v1.NewPricingHandler(pricingSvc, log),
		Subscription: v1.NewSubscriptionHandler(subscriptionSvc, log),
		Holiday:      v1.NewHolidayHandler(holidaySvc, log),
		Jobs:         cron.NewJobsCronHandler(params),
	}
}

func newRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, log)
}

func initSentry(cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return nil
}

func migrateDatabase(cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Postgres.AutoMigrate {
		return nil
	}
	if err := postgres.Migrate(cfg); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Infow("database migrations applied")
	return nil
}

func startServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Configuration, log *logger.Logger) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting http server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorw("http server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping http server")
			if cfg.Sentry.Enabled {
				sentry.Flush(2 * time.Second)
			}
			return srv.Shutdown(ctx)
		},
	})
}
