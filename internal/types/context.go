package types

import "context"

type ContextKey string

const (
	CtxRequestID  ContextKey = "ctx_request_id"
	CtxUserID     ContextKey = "ctx_user_id"
	CtxDBTx       ContextKey = "ctx_db_tx"
	DefaultUserID            = "system"
)

// GetRequestID returns the request ID from the context, if set.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxRequestID).(string); ok {
		return id
	}
	return ""
}

// SetRequestID returns a child context carrying the request ID.
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxRequestID, id)
}

// GetUserID returns the acting user ID from the context. Batch jobs and
// anything else without an authenticated user fall back to "system".
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxUserID).(string); ok && id != "" {
		return id
	}
	return DefaultUserID
}

// SetUserID returns a child context carrying the acting user ID.
func SetUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxUserID, id)
}
