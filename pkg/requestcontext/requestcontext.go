// Package requestcontext stores per-request values on a context.Context.
package requestcontext

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	callerKey
)

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithCaller returns a copy of ctx carrying the authenticated caller's wallet address.
func WithCaller(ctx context.Context, wallet string) context.Context {
	return context.WithValue(ctx, callerKey, wallet)
}

// Caller returns the authenticated caller's wallet address, or "" for
// anonymous requests.
func Caller(ctx context.Context) string {
	wallet, _ := ctx.Value(callerKey).(string)
	return wallet
}
