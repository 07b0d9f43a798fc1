package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "finitefield.org/elarion-web"

// Instruments groups the storefront counters. The zero value records nothing.
type Instruments struct {
	events    metric.Int64Counter
	checkouts metric.Int64Counter
	sessions  metric.Int64UpDownCounter
	tracer    trace.Tracer
}

// NewInstruments creates counters on the global meter provider. Without an
// installed SDK the global providers are no-ops.
func NewInstruments() (*Instruments, error) {
	return NewInstrumentsWith(otel.GetMeterProvider(), otel.GetTracerProvider())
}

// NewInstrumentsWith creates counters on explicit providers.
func NewInstrumentsWith(mp metric.MeterProvider, tp trace.TracerProvider) (*Instruments, error) {
	meter := mp.Meter(instrumentationName)
	events, err := meter.Int64Counter("storefront.events",
		metric.WithDescription("Session events applied, by kind"))
	if err != nil {
		return nil, err
	}
	checkouts, err := meter.Int64Counter("storefront.checkouts",
		metric.WithDescription("Checkout submissions, by outcome"))
	if err != nil {
		return nil, err
	}
	sessions, err := meter.Int64UpDownCounter("storefront.sessions.active",
		metric.WithDescription("Open storefront sessions"))
	if err != nil {
		return nil, err
	}
	return &Instruments{
		events:    events,
		checkouts: checkouts,
		sessions:  sessions,
		tracer:    tp.Tracer(instrumentationName),
	}, nil
}

// Event counts one applied event.
func (i *Instruments) Event(ctx context.Context, kind string) {
	if i == nil || i.events == nil {
		return
	}
	i.events.Add(ctx, 1, metric.WithAttributes(attribute.String("event", kind)))
}

// Checkout counts one submission.
func (i *Instruments) Checkout(ctx context.Context, outcome string) {
	if i == nil || i.checkouts == nil {
		return
	}
	i.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// SessionOpened and SessionClosed track the active session gauge.
func (i *Instruments) SessionOpened(ctx context.Context) {
	if i == nil || i.sessions == nil {
		return
	}
	i.sessions.Add(ctx, 1)
}

func (i *Instruments) SessionClosed(ctx context.Context) {
	if i == nil || i.sessions == nil {
		return
	}
	i.sessions.Add(ctx, -1)
}

// StartSpan opens a span named name. Nil instruments return ctx and a no-op span.
func (i *Instruments) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if i == nil || i.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return i.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
