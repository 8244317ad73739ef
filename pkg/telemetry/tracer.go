package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// Default tracer name for reactor runtimes.
const defaultTracerName = "reactor"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "reactor").
	TracerName string

	// TracerProvider provides the tracer.
	// Default: the global provider (otel.GetTracerProvider()).
	TracerProvider trace.TracerProvider

	// Context is the parent context of flush spans.
	// Default: context.Background()
	Context context.Context

	// RecordNodes adds an event per node run to the flush span.
	// Disabled by default.
	RecordNodes bool
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.TracerProvider = tp
	}
}

// WithParentContext sets the context flush spans are started in.
func WithParentContext(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Context = ctx
	}
}

// WithRecordNodes enables one span event per node run.
func WithRecordNodes(record bool) TracerOption {
	return func(c *TracerConfig) {
		c.RecordNodes = record
	}
}

// defaultTracerConfig returns the default tracer configuration.
func defaultTracerConfig() TracerConfig {
	return TracerConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
}

// Tracer is a reactive.Observer that records a span per flush.
//
// Each span is named "reactor.flush" and carries the flush statistics as
// attributes. Failures absorbed by boundaries are recorded as span events;
// a flush that returns an error ends with an error status.
type Tracer struct {
	config TracerConfig
	tracer trace.Tracer

	// span is the span of the flush in progress. Flushes never nest.
	span trace.Span
}

var _ reactive.Observer = (*Tracer)(nil)

// NewTracer creates the tracing observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := defaultTracerConfig()
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{
		config: config,
		tracer: tp.Tracer(config.TracerName),
	}
}

// FlushStarted implements reactive.Observer.
func (t *Tracer) FlushStarted() {
	_, t.span = t.tracer.Start(t.config.Context, "reactor.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(time.Now()),
	)
}

// FlushFinished implements reactive.Observer.
func (t *Tracer) FlushFinished(stats reactive.FlushStats, err error) {
	span := t.span
	if span == nil {
		return
	}
	t.span = nil

	span.SetAttributes(
		attribute.Int("reactor.waves", stats.Waves),
		attribute.Int("reactor.effects", stats.Effects),
		attribute.Int("reactor.derived", stats.Derived),
		attribute.Int("reactor.captured", stats.Captured),
		attribute.Int("reactor.dropped", stats.Dropped),
	)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("reactor.error_code", codeOf(err)))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NodeRan implements reactive.Observer.
func (t *Tracer) NodeRan(kind reactive.NodeKind, d time.Duration) {
	if !t.config.RecordNodes || t.span == nil {
		return
	}
	t.span.AddEvent("node.ran", trace.WithAttributes(
		attribute.String("reactor.node_kind", kind.String()),
		attribute.Int64("reactor.duration_us", d.Microseconds()),
	))
}

// ErrorCaptured implements reactive.Observer.
func (t *Tracer) ErrorCaptured(site string, err error) {
	if t.span == nil {
		return
	}
	t.span.AddEvent("error.captured", trace.WithAttributes(
		attribute.String("reactor.site", site),
		attribute.String("reactor.error_code", codeOf(err)),
		attribute.String("reactor.error", err.Error()),
	))
}
