package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/tiffinly/tiffinly/internal/config"
	"github.com/tiffinly/tiffinly/internal/logger"
	"github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

// Stores bundles every in-memory repository for service tests.
type Stores struct {
	SubscriptionGroupRepo *InMemorySubscriptionGroupStore
	SubscriptionRepo      *InMemorySubscriptionStore
	InvoiceRepo           *InMemoryInvoiceStore
	CreditRepo            *InMemoryCreditStore
	OrderRepo             *InMemoryOrderStore
	PriceRepo             *InMemoryPriceStore
	HolidayRepo           *InMemoryHolidayStore
	CouponRepo            *InMemoryCouponStore
	JobRunRepo            *InMemoryJobRunStore
}

// NewStores creates a fresh set of in-memory stores
func NewStores() *Stores {
	return &Stores{
		SubscriptionGroupRepo: NewInMemorySubscriptionGroupStore(),
		SubscriptionRepo:      NewInMemorySubscriptionStore(),
		InvoiceRepo:           NewInMemoryInvoiceStore(),
		CreditRepo:            NewInMemoryCreditStore(),
		OrderRepo:             NewInMemoryOrderStore(),
		PriceRepo:             NewInMemoryPriceStore(),
		HolidayRepo:           NewInMemoryHolidayStore(),
		CouponRepo:            NewInMemoryCouponStore(),
		JobRunRepo:            NewInMemoryJobRunStore(),
	}
}

// BaseServiceTestSuite provides common setup for service tests: fresh
// in-memory stores, a passthrough transactional client, a mock payment
// gateway and a request-scoped context.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *Stores
	db      postgres.IClient
	gateway *MockPaymentGateway
	logger  *logger.Logger
	config  *config.Configuration
}

// SetupTest initializes fresh state before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.config = config.GetDefaultConfig()
	s.logger = logger.GetLogger()
	s.stores = NewStores()
	s.db = NewMockDB()
	s.gateway = NewMockPaymentGateway()

	ctx := context.Background()
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	ctx = types.SetRequestID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	s.ctx = ctx
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the in-memory stores
func (s *BaseServiceTestSuite) GetStores() *Stores {
	return s.stores
}

// GetDB returns the mock transactional client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetPaymentGateway returns the mock payment gateway
func (s *BaseServiceTestSuite) GetPaymentGateway() *MockPaymentGateway {
	return s.gateway
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// ClearStores resets every store
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores = NewStores()
}
