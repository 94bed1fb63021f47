package bus

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"auditkit/audit"
)

const tracerName = "auditkit/bus"

// Observed decorates a Bus with tracing, logging, and metrics.
type Observed struct {
	inner   Bus
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics busMetrics
}

type Option func(*Observed)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Observed) { o.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(o *Observed) { o.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(o *Observed) { o.metrics = newBusMetrics(m) }
}

// NewObserved wraps the inner bus.
func NewObserved(inner Bus, opts ...Option) Bus {
	o := &Observed{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newBusMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.tracer == nil {
		o.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	return o
}

func (o *Observed) Publish(ctx context.Context, e audit.Event) error {
	name := ""
	if e != nil {
		name = e.EventName()
	}
	ctx, span := o.tracer.Start(ctx, "Bus.Publish", trace.WithAttributes(attribute.String("event.name", name)))
	defer span.End()
	if err := o.inner.Publish(ctx, e); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.metrics.recordFailed(ctx)
		o.logger.LogAttrs(ctx, slog.LevelError, "event publish failed",
			slog.String("event", name), slog.String("error", err.Error()))
		return err
	}
	o.metrics.recordPublished(ctx)
	o.logger.LogAttrs(ctx, slog.LevelDebug, "event published", slog.String("event", name))
	return nil
}

type busMetrics struct {
	published metric.Int64Counter
	failed    metric.Int64Counter
}

func newBusMetrics(m metric.Meter) busMetrics {
	if m == nil {
		return busMetrics{}
	}
	published, _ := m.Int64Counter("bus.events.published", metric.WithDescription("Number of events delivered to all subscribers"))
	failed, _ := m.Int64Counter("bus.events.failed", metric.WithDescription("Number of events with at least one failing subscriber"))
	return busMetrics{published: published, failed: failed}
}

func (m busMetrics) recordPublished(ctx context.Context) {
	if m.published != nil {
		m.published.Add(ctx, 1)
	}
}

func (m busMetrics) recordFailed(ctx context.Context) {
	if m.failed != nil {
		m.failed.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ Bus = (*Observed)(nil)
