package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/tiffinly/tiffinly/internal/domain/invoice"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/payment/razorpay"
)

// MockPaymentGateway is a configurable in-memory payment gateway.
// Charges succeed by default; DeclineAll flips every attempt into a
// decline, and FailInvoices declines specific invoices.
type MockPaymentGateway struct {
	mu           sync.Mutex
	seq          int
	DeclineAll   bool
	FailInvoices map[string]bool
	// TransportErr, when set, is returned from Charge as a transport
	// failure instead of a decline.
	TransportErr bool
	// Charges records every invoice id passed to Charge, in order.
	Charges []string
}

// NewMockPaymentGateway creates a new mock payment gateway
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{FailInvoices: make(map[string]bool)}
}

func (g *MockPaymentGateway) CreateOrder(ctx context.Context, inv *invoice.Invoice) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("order_test_%d", g.seq), nil
}

func (g *MockPaymentGateway) Charge(ctx context.Context, inv *invoice.Invoice) (*razorpay.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Charges = append(g.Charges, inv.ID)

	if g.TransportErr {
		return nil, ierr.NewError("payment provider unreachable").
			WithHint("Failed to reach payment provider").
			Mark(ierr.ErrHTTPClient)
	}

	g.seq++
	orderID := fmt.Sprintf("order_test_%d", g.seq)
	if inv.RazorpayOrderID != nil {
		orderID = *inv.RazorpayOrderID
	}

	if g.DeclineAll || g.FailInvoices[inv.ID] {
		return &razorpay.ChargeResult{
			OrderID:       orderID,
			FailureReason: "card declined",
		}, nil
	}
	return &razorpay.ChargeResult{
		OrderID:   orderID,
		PaymentID: fmt.Sprintf("pay_test_%d", g.seq),
		Paid:      true,
	}, nil
}

var _ razorpay.Gateway = (*MockPaymentGateway)(nil)
