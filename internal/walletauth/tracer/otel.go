package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the OpenTelemetry scope of every walletauth span.
const InstrumentationName = "microauth/walletauth"

// attrNamespace prefixes span attribute keys so wallet and caller do not
// collide with attributes set by HTTP instrumentation.
const attrNamespace = "walletauth."

// OTelTracer records walletauth spans through an OpenTelemetry provider.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTel traces through the global provider. Spans are exported only once the
// process registers a TracerProvider with otel.SetTracerProvider; until then
// they are dropped.
func NewOTel() *OTelTracer {
	return NewOTelWithProvider(otel.GetTracerProvider())
}

func NewOTelWithProvider(tp trace.TracerProvider) *OTelTracer {
	return &OTelTracer{tracer: tp.Tracer(InstrumentationName)}
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(keyValues(attrs)...),
	)
	return ctx, otelSpan{span}
}

type otelSpan struct {
	span trace.Span
}

// End marks the span failed with err, or successful when err is nil.
func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(keyValues(attrs)...)
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(keyValues(attrs)...))
}

// keyValues maps the attribute constructors of this package: strings
// (including abbreviated wallets), bools, ints and millisecond durations.
// Anything else is recorded in its printed form.
func keyValues(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	kvs := make([]attribute.KeyValue, len(attrs))
	for i, a := range attrs {
		key := attrNamespace + a.Key
		switch v := a.Value.(type) {
		case string:
			kvs[i] = attribute.String(key, v)
		case bool:
			kvs[i] = attribute.Bool(key, v)
		case int:
			kvs[i] = attribute.Int(key, v)
		case int64:
			kvs[i] = attribute.Int64(key, v)
		default:
			kvs[i] = attribute.String(key, fmt.Sprint(v))
		}
	}
	return kvs
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = otelSpan{}
)
