package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/tiffinly/tiffinly/internal/api"
	"github.com/tiffinly/tiffinly/internal/api/cron"
	v1 "github.com/tiffinly/tiffinly/internal/api/v1"
	"github.com/tiffinly/tiffinly/internal/config"
	"github.com/tiffinly/tiffinly/internal/service"
	"github.com/tiffinly/tiffinly/internal/testutil"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	params service.ServiceParams
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	s.params = service.ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		GroupRepo:      s.GetStores().SubscriptionGroupRepo,
		SubRepo:        s.GetStores().SubscriptionRepo,
		InvoiceRepo:    s.GetStores().InvoiceRepo,
		CreditRepo:     s.GetStores().CreditRepo,
		OrderRepo:      s.GetStores().OrderRepo,
		PriceRepo:      s.GetStores().PriceRepo,
		HolidayRepo:    s.GetStores().HolidayRepo,
		CouponRepo:     s.GetStores().CouponRepo,
		JobRunRepo:     s.GetStores().JobRunRepo,
		PaymentGateway: s.GetPaymentGateway(),
	}
	s.router = s.buildRouter(s.GetConfig())
}

func (s *RouterSuite) buildRouter(cfg *config.Configuration) *gin.Engine {
	handlers := api.Handlers{
		Pricing:      v1.NewPricingHandler(service.NewPricingService(s.params), s.GetLogger()),
		Subscription: v1.NewSubscriptionHandler(service.NewSubscriptionService(s.params), s.GetLogger()),
		Holiday:      v1.NewHolidayHandler(service.NewHolidayService(s.params), s.GetLogger()),
		Jobs:         cron.NewJobsCronHandler(s.params),
	}
	return api.NewRouter(handlers, cfg, s.GetLogger())
}

func (s *RouterSuite) request(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

var jobPaths = []string{
	"/jobs/renewal",
	"/jobs/payment-retry",
	"/jobs/generate-orders",
	"/jobs/auto-cancel-paused",
	"/jobs/expire-credits",
}

func (s *RouterSuite) TestJobRoutesAcceptGetAndPost() {
	for _, path := range jobPaths {
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			w := s.request(s.router, method, path, "test-secret")
			s.Equalf(http.StatusOK, w.Code, "%s %s: %s", method, path, w.Body.String())
		}
	}
}

func (s *RouterSuite) TestJobRoutesRejectBadSecret() {
	for _, path := range jobPaths {
		w := s.request(s.router, http.MethodPost, path, "wrong-secret")
		s.Equalf(http.StatusUnauthorized, w.Code, "POST %s", path)
	}
	w := s.request(s.router, http.MethodPost, "/jobs/renewal", "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestUnconfiguredSecretIsServerFault() {
	cfg := *s.GetConfig()
	cfg.Cron.Secret = ""
	router := s.buildRouter(&cfg)

	w := s.request(router, http.MethodPost, "/jobs/renewal", "anything")
	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *RouterSuite) TestRenewalResponseUsesDocumentedKeys() {
	w := s.request(s.router, http.MethodPost, "/jobs/renewal", "test-secret")
	s.Equal(http.StatusOK, w.Code)

	var resp struct {
		Success bool                   `json:"success"`
		Result  map[string]interface{} `json:"result"`
	}
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Success)
	s.Contains(resp.Result, "invoicesCreated")
	s.Contains(resp.Result, "hasMore")
	s.Contains(resp.Result, "processed")
	s.NotContains(resp.Result, "invoices_created")
}

func (s *RouterSuite) TestHealthRouteIsPublic() {
	w := s.request(s.router, http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, w.Code)
}
