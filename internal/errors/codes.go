package errors

import "github.com/cockroachdb/errors"

// Error codes used across the application. Services mark errors with one
// of these sentinels and the HTTP layer maps them to status codes.
var (
	ErrValidation       = errors.New("validation_error")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyExists    = errors.New("already_exists")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrPriceNotFound    = errors.New("price_not_found")
	ErrPaymentFailed    = errors.New("payment_failed")
	ErrDatabase         = errors.New("database_error")
	ErrHTTPClient       = errors.New("http_client_error")
	ErrInternal         = errors.New("internal_error")
)

// IsNotFound returns true if the error is marked as a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists returns true if the error is marked as an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation returns true if the error is marked as a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsPriceNotFound returns true if the error is marked as a price not found error
func IsPriceNotFound(err error) bool {
	return errors.Is(err, ErrPriceNotFound)
}

// IsPaymentFailed returns true if the error is marked as a payment failure
func IsPaymentFailed(err error) bool {
	return errors.Is(err, ErrPaymentFailed)
}

// IsPermissionDenied returns true if the error is marked as a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
