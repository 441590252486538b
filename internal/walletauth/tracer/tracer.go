// Package tracer is the span abstraction used by the wallet authorization
// service. It keeps OpenTelemetry out of the service's signatures; NoopTracer
// serves tests and OTelTracer serves production.
package tracer

import (
	"context"
	"time"

	"microauth/pkg/domain"
)

// Span is an in-flight unit of work. End must be called exactly once.
type Span interface {
	// End completes the span; a non-nil err marks it failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Wallet attaches the abbreviated form of a wallet address.
func Wallet(key, wallet string) Attribute {
	return String(key, domain.WalletAddress(wallet).Short())
}

// Span names.
const (
	SpanStatus          = "walletauth.status"
	SpanBatchStatus     = "walletauth.status.batch"
	SpanSetStatus       = "walletauth.set_status"
	SpanSetNextContract = "walletauth.set_next_contract"
	SpanTransferAdmin   = "walletauth.transfer_admin"
	SpanPersist         = "walletauth.persist"
	SpanBootstrap       = "walletauth.bootstrap"
)

// Attribute keys.
const (
	AttrWallet        = "wallet"
	AttrCaller        = "caller"
	AttrStatus        = "status"
	AttrTrustScore    = "trust_score"
	AttrApplied       = "applied"
	AttrLookupOutcome = "lookup.outcome"
	AttrBatchSize     = "batch.size"
	AttrStoreBackend  = "store.backend"
)

// Event names.
const (
	EventAuthorized = "authz.granted"
	EventPersisted  = "store.persisted"
)
