// Package requestcontext provides transport-independent context accessors for call-scoped values.
//
// Every ledger entry point reads its caller identity, attached native payment and
// current time from the context rather than taking them as parameters. Middleware,
// the ledger coordinator and tests set them; services only read.
//
// Usage in services (read values):
//
//	caller := requestcontext.Caller(ctx)
//	paid := requestcontext.Payment(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithCaller(ctx, alice)
//	ctx = requestcontext.WithPayment(ctx, big.NewInt(100))
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"math/big"
	"time"

	"keyledger/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	callerKey      struct{}
	paymentKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyCaller      = callerKey{}
	ContextKeyPayment     = paymentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Call context (caller identity, attached payment)
// -----------------------------------------------------------------------------

// Caller retrieves the identity making the current call.
// Returns the zero address if not set.
func Caller(ctx context.Context) domain.Address {
	if caller, ok := ctx.Value(ContextKeyCaller).(domain.Address); ok {
		return caller
	}
	return domain.ZeroAddress
}

// WithCaller injects the calling identity into the context.
func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// Payment retrieves the native amount attached to the current call.
// Never returns nil; the result is a copy the caller may modify.
func Payment(ctx context.Context) *big.Int {
	if v, ok := ctx.Value(ContextKeyPayment).(*big.Int); ok && v != nil {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// WithPayment attaches a native amount to the call. A nil amount clears it.
func WithPayment(ctx context.Context, amount *big.Int) context.Context {
	if amount == nil {
		amount = new(big.Int)
	}
	return context.WithValue(ctx, ContextKeyPayment, new(big.Int).Set(amount))
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the call-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// HasTime reports whether a call-scoped time has been injected.
func HasTime(ctx context.Context) bool {
	_, ok := ctx.Value(ContextKeyRequestTime).(time.Time)
	return ok
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that pin the ledger clock
//   - The ledger coordinator freezing "now" for one operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
