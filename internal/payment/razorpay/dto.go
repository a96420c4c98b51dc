package razorpay

// Razorpay payment lifecycle statuses.
const (
	PaymentStatusCreated    = "created"
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
	PaymentStatusFailed     = "failed"
)

// Invoice metadata keys the gateway reads to charge a saved mandate.
const (
	MetadataKeyCustomerRef = "razorpay_customer_id"
	MetadataKeyToken       = "razorpay_token"
)

// ChargeResult is the outcome of a charge attempt against an invoice.
type ChargeResult struct {
	OrderID       string
	PaymentID     string
	Paid          bool
	FailureReason string
}
