package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError is the rich error type carried through the service layer.
// It wraps an underlying cause, an operator hint and optional details
// that are safe to report back to the caller.
type InternalError struct {
	cause             error
	hint              string
	reportableDetails map[string]interface{}
	mark              error
}

// ErrorBuilder provides a fluent API for constructing an InternalError.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts building an error from a plain message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: errors.New(msg)}}
}

// NewErrorf starts building an error from a formatted message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: errors.Newf(format, args...)}}
}

// WithError starts building an error wrapping an existing cause.
// If the cause is already an InternalError its hint and details are
// preserved unless overridden.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}
	if ie, ok := err.(*InternalError); ok {
		clone := *ie
		return &ErrorBuilder{err: &clone}
	}
	return &ErrorBuilder{err: &InternalError{cause: err}}
}

// WithHint attaches a human readable hint to the error.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted hint to the error.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details that may be returned
// to API callers.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.reportableDetails = details
	return b
}

// Mark finalizes the error with one of the sentinel error codes.
func (b *ErrorBuilder) Mark(code error) *InternalError {
	b.err.mark = code
	return b.err
}

func (e *InternalError) Error() string {
	if e.hint != "" {
		return fmt.Sprintf("%s: %s", e.cause.Error(), e.hint)
	}
	return e.cause.Error()
}

// Unwrap exposes the sentinel mark (and transitively the cause) so that
// errors.Is works against the code sentinels.
func (e *InternalError) Unwrap() error {
	if e.mark != nil {
		return e.mark
	}
	return e.cause
}

// Cause returns the underlying wrapped error.
func (e *InternalError) Cause() error {
	return e.cause
}

// Is matches against both the mark and the wrapped cause chain.
func (e *InternalError) Is(target error) bool {
	if e.mark != nil && errors.Is(e.mark, target) {
		return true
	}
	return errors.Is(e.cause, target)
}

// Hint returns the attached hint, if any.
func (e *InternalError) Hint() string {
	return e.hint
}

// ReportableDetails returns the attached details, if any.
func (e *InternalError) ReportableDetails() map[string]interface{} {
	return e.reportableDetails
}

// Code returns the string form of the sentinel mark.
func (e *InternalError) Code() string {
	if e.mark == nil {
		return ErrInternal.Error()
	}
	return e.mark.Error()
}

// ErrorResponse is the JSON shape returned by HTTP handlers on failure.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the serializable part of an InternalError.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewErrorResponse builds the API error payload from any error.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:    ErrInternal.Error(),
			Message: "An unexpected error occurred",
		},
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		resp.Error.Code = ie.Code()
		msg := ie.Hint()
		if msg == "" {
			msg = ie.Error()
		}
		resp.Error.Message = msg
		resp.Error.Details = ie.ReportableDetails()
	}
	return resp
}
