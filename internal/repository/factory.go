package repository

import (
	"github.com/tiffinly/tiffinly/internal/domain/coupon"
	"github.com/tiffinly/tiffinly/internal/domain/credit"
	"github.com/tiffinly/tiffinly/internal/domain/holiday"
	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	"github.com/tiffinly/tiffinly/internal/domain/jobrun"
	"github.com/tiffinly/tiffinly/internal/domain/order"
	"github.com/tiffinly/tiffinly/internal/domain/price"
	"github.com/tiffinly/tiffinly/internal/domain/subscription"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	pgrepo "github.com/tiffinly/tiffinly/internal/repository/postgres"
)

// NewSubscriptionGroupRepository creates a new subscription group repository
func NewSubscriptionGroupRepository(client *dbpg.Client, log *logger.Logger) subscription.GroupRepository {
	return pgrepo.NewSubscriptionGroupRepository(client, log)
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(client *dbpg.Client, log *logger.Logger) subscription.Repository {
	return pgrepo.NewSubscriptionRepository(client, log)
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(client *dbpg.Client, log *logger.Logger) invoice.Repository {
	return pgrepo.NewInvoiceRepository(client, log)
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(client *dbpg.Client, log *logger.Logger) credit.Repository {
	return pgrepo.NewCreditRepository(client, log)
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(client *dbpg.Client, log *logger.Logger) order.Repository {
	return pgrepo.NewOrderRepository(client, log)
}

// NewPriceRepository creates a new vendor price repository
func NewPriceRepository(client *dbpg.Client, log *logger.Logger) price.Repository {
	return pgrepo.NewPriceRepository(client, log)
}

// NewHolidayRepository creates a new vendor holiday repository
func NewHolidayRepository(client *dbpg.Client, log *logger.Logger) holiday.Repository {
	return pgrepo.NewHolidayRepository(client, log)
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(client *dbpg.Client, log *logger.Logger) coupon.Repository {
	return pgrepo.NewCouponRepository(client, log)
}

// NewJobRunRepository creates a new job run repository
func NewJobRunRepository(client *dbpg.Client, log *logger.Logger) jobrun.Repository {
	return pgrepo.NewJobRunRepository(client, log)
}
