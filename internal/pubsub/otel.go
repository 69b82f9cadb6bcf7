package pubsub

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/duelsim/duelsim/internal/config"
)

// TracingConfig holds the bus tracing settings.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	ZipkinURL   string
}

// DefaultTracingConfig returns tracing disabled with local defaults.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:     false,
		ServiceName: "duelsim",
		ZipkinURL:   "http://localhost:9411/api/v2/spans",
	}
}

// TracingConfigFrom derives the tracing settings from the application
// configuration.
func TracingConfigFrom(cfg config.Provider) TracingConfig {
	tc := DefaultTracingConfig()
	if cfg == nil {
		return tc
	}
	tc.Enabled = cfg.TracingEnabled()
	if url := cfg.ZipkinURL(); url != "" {
		tc.ZipkinURL = url
	}
	return tc
}

// SetupOTel initializes OpenTelemetry with a Zipkin exporter for bus
// observability. When disabled it hands back a no-op tracer so callers
// never branch.
func SetupOTel(ctx context.Context, cfg TracingConfig) (trace.Tracer, func(), error) {
	if !cfg.Enabled {
		tracer := noop.NewTracerProvider().Tracer("duelsim-pubsub")
		return tracer, func() {}, nil
	}

	exporter, err := zipkin.New(cfg.ZipkinURL)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String("1.0.0"),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(ctx); err != nil {
			panic(err)
		}
	}
	return tp.Tracer("duelsim-pubsub"), cleanup, nil
}

// TracingMiddleware adds a processing span around every handled message.
// The bridge applies it to subscription handlers when built with a tracer.
func TracingMiddleware(tracer trace.Tracer) func(Handler) Handler {
	return func(h Handler) Handler {
		return func(ctx context.Context, msg Message) error {
			spanCtx, span := tracer.Start(ctx, "pubsub.process."+msg.Topic,
				trace.WithAttributes(
					attribute.String("messaging.system", "watermill"),
					attribute.String("messaging.operation", "process"),
					attribute.String("messaging.destination", msg.Topic),
					attribute.String("match.id", msg.MatchID),
					attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
				),
			)
			defer span.End()

			if err := h(spanCtx, msg); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
			return nil
		}
	}
}

// TracedPublisher wraps a Publisher with a publish span per message.
type TracedPublisher struct {
	inner  Publisher
	tracer trace.Tracer
}

// NewTracedPublisher creates the tracing wrapper.
func NewTracedPublisher(inner Publisher, tracer trace.Tracer) *TracedPublisher {
	return &TracedPublisher{
		inner:  inner,
		tracer: tracer,
	}
}

// Publish wraps the publish operation with tracing.
func (p *TracedPublisher) Publish(ctx context.Context, msg Message) error {
	spanCtx, span := p.tracer.Start(ctx, "pubsub.publish."+msg.Topic,
		trace.WithAttributes(
			attribute.String("messaging.system", "watermill"),
			attribute.String("messaging.operation", "publish"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.String("match.id", msg.MatchID),
			attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
		),
	)
	defer span.End()

	if err := p.inner.Publish(spanCtx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Close closes the underlying publisher.
func (p *TracedPublisher) Close() error {
	return p.inner.Close()
}
