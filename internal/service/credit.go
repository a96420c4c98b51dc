package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tiffinly/tiffinly/internal/domain/credit"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/types"
)

// CreditSelection is the outcome of picking credits for a cycle: the
// exact ids to consume and how many meals they cover.
type CreditSelection struct {
	CreditIDs []string
	Meals     int
}

// CreditService is the credit ledger: issuance, selection for
// consumption, and the expiry sweep. Credits are never deleted; they
// flip from active to consumed or expired.
type CreditService interface {
	// IssueMealCredit writes one meal credit against a subscription.
	IssueMealCredit(ctx context.Context, subscriptionID, customerID string, source types.CreditSource, meals int) (*credit.Credit, error)

	// IssueMonetaryCredit writes a customer-level monetary credit, the
	// auto-cancel conversion path.
	IssueMonetaryCredit(ctx context.Context, customerID string, source types.CreditSource, amount decimal.Decimal) (*credit.Credit, error)

	// SelectCredits picks available meal credits for a subscription,
	// oldest expiry first, never covering more than needed meals.
	// Read-only; the caller consumes via ConsumeCredits in its own
	// transaction.
	SelectCredits(ctx context.Context, subscriptionID string, needed int, asOf time.Time) (*CreditSelection, error)

	// ConsumeCredits flips the selected credits to consumed against an
	// invoice. Errors if any credit was consumed concurrently.
	ConsumeCredits(ctx context.Context, creditIDs []string, invoiceID string) error

	// ExpireDue flips every active credit past its expiry and returns
	// the count.
	ExpireDue(ctx context.Context, asOf time.Time) (int, error)
}

type creditService struct {
	ServiceParams
}

// NewCreditService creates a new credit service
func NewCreditService(params ServiceParams) CreditService {
	return &creditService{ServiceParams: params}
}

func (s *creditService) IssueMealCredit(ctx context.Context, subscriptionID, customerID string, source types.CreditSource, meals int) (*credit.Credit, error) {
	if meals <= 0 {
		return nil, ierr.NewError("meal count must be positive").
			WithHint("Meal count must be positive").
			WithReportableDetails(map[string]interface{}{"meals": meals}).
			Mark(ierr.ErrValidation)
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().AddDate(0, 0, s.Config.Billing.CreditExpiryDays)
	c := &credit.Credit{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT),
		CustomerID:     customerID,
		SubscriptionID: lo.ToPtr(subscriptionID),
		Type:           types.CreditTypeMeal,
		Source:         source,
		MealCount:      meals,
		Amount:         decimal.Zero,
		ExpiresAt:      lo.ToPtr(expiresAt),
		CreditStatus:   types.CreditStatusActive,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := s.CreditRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Logger.Infow("issued meal credit",
		"credit_id", c.ID,
		"subscription_id", subscriptionID,
		"source", source,
		"meals", meals)
	return c, nil
}

func (s *creditService) IssueMonetaryCredit(ctx context.Context, customerID string, source types.CreditSource, amount decimal.Decimal) (*credit.Credit, error) {
	if !amount.IsPositive() {
		return nil, ierr.NewError("credit amount must be positive").
			WithHint("Credit amount must be positive").
			WithReportableDetails(map[string]interface{}{"amount": amount.String()}).
			Mark(ierr.ErrValidation)
	}

	expiresAt := time.Now().UTC().AddDate(0, 0, s.Config.Billing.ConversionCreditExpiryDays)
	c := &credit.Credit{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT),
		CustomerID:   customerID,
		Type:         types.CreditTypeMonetary,
		Source:       source,
		Amount:       amount.Round(2),
		ExpiresAt:    lo.ToPtr(expiresAt),
		CreditStatus: types.CreditStatusActive,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	if err := s.CreditRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Logger.Infow("issued monetary credit",
		"credit_id", c.ID,
		"customer_id", customerID,
		"source", source,
		"amount", c.Amount.String())
	return c, nil
}

func (s *creditService) SelectCredits(ctx context.Context, subscriptionID string, needed int, asOf time.Time) (*CreditSelection, error) {
	selection := &CreditSelection{}
	if needed <= 0 {
		return selection, nil
	}

	available, err := s.CreditRepo.ListAvailableBySubscription(ctx, subscriptionID, asOf)
	if err != nil {
		return nil, err
	}

	// Whole credits only: a credit is consumed at most once, so one
	// that would overshoot the need is left for the next cycle.
	for _, c := range available {
		if selection.Meals+c.MealCount > needed {
			continue
		}
		selection.CreditIDs = append(selection.CreditIDs, c.ID)
		selection.Meals += c.MealCount
		if selection.Meals == needed {
			break
		}
	}
	return selection, nil
}

func (s *creditService) ConsumeCredits(ctx context.Context, creditIDs []string, invoiceID string) error {
	if len(creditIDs) == 0 {
		return nil
	}
	return s.CreditRepo.MarkConsumed(ctx, creditIDs, invoiceID, time.Now().UTC())
}

func (s *creditService) ExpireDue(ctx context.Context, asOf time.Time) (int, error) {
	expired, err := s.CreditRepo.ExpireDue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.Logger.Infow("expired credits", "count", expired, "as_of", asOf)
	}
	return expired, nil
}
