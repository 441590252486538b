package tracer_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"microauth/internal/walletauth/tracer"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanSetStatus, tracer.Bool(tracer.AttrApplied, true))

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Int(tracer.AttrTrustScore, 42))
	span.AddEvent(tracer.EventPersisted)
	span.End(errors.New("ignored"))
}

// recordingProvider keeps the name and start attributes of every span.
type recordingProvider struct {
	noop.TracerProvider
	mu    sync.Mutex
	spans []startedSpan
}

type startedSpan struct {
	name  string
	attrs map[attribute.Key]attribute.Value
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{provider: p}
}

func (p *recordingProvider) started() []startedSpan {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]startedSpan(nil), p.spans...)
}

type recordingTracer struct {
	noop.Tracer
	provider *recordingProvider
}

func (r recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	attrs := make(map[attribute.Key]attribute.Value)
	cfg := trace.NewSpanStartConfig(opts...)
	for _, kv := range cfg.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	r.provider.mu.Lock()
	r.provider.spans = append(r.provider.spans, startedSpan{name: name, attrs: attrs})
	r.provider.mu.Unlock()
	return r.Tracer.Start(ctx, name, opts...)
}

func TestOTelTracer_MapsWalletAttributes(t *testing.T) {
	provider := &recordingProvider{}
	tr := tracer.NewOTelWithProvider(provider)

	ctx, span := tr.Start(context.Background(), tracer.SpanSetStatus,
		tracer.Wallet(tracer.AttrWallet, strings.Repeat("A", 54)+"ZZZZZZ"),
		tracer.Int(tracer.AttrTrustScore, 42),
		tracer.Bool(tracer.AttrApplied, true),
		tracer.Duration("elapsed", 1500*time.Millisecond),
		tracer.Attribute{Key: "outcome", Value: struct{ N int }{7}},
	)
	require.NotNil(t, ctx)
	span.SetAttributes(tracer.Bool(tracer.AttrApplied, false))
	span.AddEvent(tracer.EventAuthorized)
	span.End(errors.New("store unavailable"))

	started := provider.started()
	require.Len(t, started, 1)
	assert.Equal(t, tracer.SpanSetStatus, started[0].name)
	attrs := started[0].attrs
	assert.Equal(t, "AAAAAA...ZZZZZZ", attrs["walletauth.wallet"].AsString())
	assert.Equal(t, int64(42), attrs["walletauth.trust_score"].AsInt64())
	assert.True(t, attrs["walletauth.applied"].AsBool())
	assert.Equal(t, int64(1500), attrs["walletauth.elapsed"].AsInt64())
	assert.Equal(t, "{7}", attrs["walletauth.outcome"].AsString())
}

func TestOTelTracer_ExportsThroughRegisteredGlobalProvider(t *testing.T) {
	provider := &recordingProvider{}
	otel.SetTracerProvider(provider)

	_, span := tracer.NewOTel().Start(context.Background(), tracer.SpanStatus)
	span.End(nil)

	started := provider.started()
	require.Len(t, started, 1)
	assert.Equal(t, tracer.SpanStatus, started[0].name)
}

func TestWalletAttribute_IsAbbreviated(t *testing.T) {
	attr := tracer.Wallet(tracer.AttrWallet, strings.Repeat("A", 54)+"ZZZZZZ")
	assert.Equal(t, "AAAAAA...ZZZZZZ", attr.Value)
}
