package service

import (
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
)

// ServiceParams bundles every dependency a service can need. Each
// service constructor takes the full bundle and uses what it wants, so
// wiring stays uniform in main and in tests.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	GroupRepo   subscription.GroupRepository
	SubRepo     subscription.Repository
	InvoiceRepo invoice.Repository
	CreditRepo  credit.Repository
	OrderRepo   order.Repository
	PriceRepo   price.Repository
	HolidayRepo holiday.Repository
	CouponRepo  coupon.Repository
	JobRunRepo  jobrun.Repository

	PaymentGateway razorpay.Gateway
}
