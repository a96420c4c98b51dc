package razorpay

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	razorpay "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tiffinly/tiffinly/internal/config"
	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
)

// Gateway defines the payment operations the billing jobs depend on.
type Gateway interface {
	// CreateOrder registers the invoice with Razorpay and returns the order id.
	CreateOrder(ctx context.Context, inv *invoice.Invoice) (string, error)
	// Charge attempts to collect the invoice amount against the customer's
	// saved mandate. A declined payment returns a ChargeResult with
	// Paid=false and a nil error; transport failures return an error.
	Charge(ctx context.Context, inv *invoice.Invoice) (*ChargeResult, error)
}

type gateway struct {
	rz     *razorpay.Client
	logger *logger.Logger
}

// NewGateway creates a Razorpay-backed payment gateway.
func NewGateway(cfg *config.Configuration, log *logger.Logger) Gateway {
	return &gateway{
		rz:     razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
		logger: log,
	}
}

func (g *gateway) CreateOrder(ctx context.Context, inv *invoice.Invoice) (string, error) {
	data := map[string]interface{}{
		// Razorpay amounts are in the smallest currency unit (paise for INR).
		// Round to nearest integer to avoid truncation errors.
		"amount":   amountInSmallestUnit(inv.Amount),
		"currency": inv.Currency,
		"receipt":  inv.ID,
		"notes": map[string]interface{}{
			"group_id":    inv.GroupID,
			"customer_id": inv.CustomerID,
			"cycle_start": inv.CycleStart.Format("2006-01-02"),
		},
	}

	resp, err := g.call(ctx, func() (map[string]interface{}, error) {
		return g.rz.Order.Create(data, nil)
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create payment order").
			WithReportableDetails(map[string]interface{}{"invoice_id": inv.ID}).
			Mark(ierr.ErrHTTPClient)
	}

	orderID, _ := resp["id"].(string)
	if orderID == "" {
		return "", ierr.NewError("payment order response missing id").
			WithHint("Unexpected response from payment provider").
			Mark(ierr.ErrHTTPClient)
	}

	g.logger.Infow("created razorpay order",
		"invoice_id", inv.ID,
		"order_id", orderID,
		"amount", inv.Amount.String())
	return orderID, nil
}

func (g *gateway) Charge(ctx context.Context, inv *invoice.Invoice) (*ChargeResult, error) {
	orderID := lo.FromPtr(inv.RazorpayOrderID)
	if orderID == "" {
		created, err := g.CreateOrder(ctx, inv)
		if err != nil {
			return nil, err
		}
		orderID = created
	}

	customerRef := inv.Metadata[MetadataKeyCustomerRef]
	token := inv.Metadata[MetadataKeyToken]
	if customerRef == "" || token == "" {
		return &ChargeResult{
			OrderID:       orderID,
			FailureReason: "no saved payment mandate for customer",
		}, nil
	}

	data := map[string]interface{}{
		"amount":      amountInSmallestUnit(inv.Amount),
		"currency":    inv.Currency,
		"order_id":    orderID,
		"customer_id": customerRef,
		"token":       token,
		"recurring":   "1",
		"description": fmt.Sprintf("Subscription renewal %s", inv.CycleStart.Format("2006-01-02")),
	}

	resp, err := g.call(ctx, func() (map[string]interface{}, error) {
		return g.rz.Payment.CreateRecurringPayment(data, nil)
	})
	if err != nil {
		var badReq *rzperrors.BadRequestError
		if stderrors.As(err, &badReq) {
			// The provider rejected the charge (insufficient funds, expired
			// mandate). That is a decline, not a transport failure.
			g.logger.Warnw("payment declined",
				"invoice_id", inv.ID,
				"order_id", orderID,
				"reason", badReq.Error())
			return &ChargeResult{
				OrderID:       orderID,
				FailureReason: badReq.Error(),
			}, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to reach payment provider").
			WithReportableDetails(map[string]interface{}{
				"invoice_id": inv.ID,
				"order_id":   orderID,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	paymentID, _ := resp["razorpay_payment_id"].(string)
	if paymentID == "" {
		paymentID, _ = resp["id"].(string)
	}
	status, _ := resp["status"].(string)

	result := &ChargeResult{
		OrderID:   orderID,
		PaymentID: paymentID,
		Paid:      status == PaymentStatusCaptured || status == PaymentStatusAuthorized || status == "",
	}
	if !result.Paid {
		result.FailureReason = fmt.Sprintf("payment status %s", status)
	}

	g.logger.Infow("charge attempt completed",
		"invoice_id", inv.ID,
		"order_id", orderID,
		"payment_id", paymentID,
		"paid", result.Paid)
	return result, nil
}

// call runs a Razorpay API operation with bounded exponential retry.
// Bad request errors are not retried; the provider will keep rejecting them.
func (g *gateway) call(ctx context.Context, op func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	var resp map[string]interface{}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	err := backoff.Retry(func() error {
		var err error
		resp, err = op()
		if err != nil {
			var badReq *rzperrors.BadRequestError
			if stderrors.As(err, &badReq) {
				return backoff.Permanent(err)
			}
			g.logger.Warnw("razorpay call failed, retrying", "error", err)
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func amountInSmallestUnit(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
