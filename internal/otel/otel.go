package otel

import (
	"context"
	"sync"
	"time"

	eventbus "github.com/hanpama/gqladmin/internal/eventbus"
	events "github.com/hanpama/gqladmin/internal/events"
	reqid "github.com/hanpama/gqladmin/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentation = "github.com/hanpama/gqladmin"

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Register(tp.Tracer(instrumentation))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes span recording for HTTP and shape events to the
// global bus, using tracer. The returned func detaches the subscribers.
func Register(tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register()
}

type subscriber struct {
	tracer     trace.Tracer
	httpSpans  sync.Map // serial -> trace.Span
	shapeSpans sync.Map // serial -> trace.Span
}

// serial keys the open spans of the request in ctx. Request IDs come from
// callers and may repeat across in-flight requests; serials do not.
func serial(ctx context.Context) string {
	s, _ := reqid.SerialFromContext(ctx)
	return s
}

// parent returns ctx carrying the innermost open span of the request.
func (s *subscriber) parent(ctx context.Context, key string) context.Context {
	if v, ok := s.shapeSpans.Load(key); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	if v, ok := s.httpSpans.Load(key); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func (s *subscriber) register() func() {
	offs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
			_, span := s.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				attribute.String("http.target", e.Request.URL.Path),
				attribute.String("request.id", e.RequestID),
			)
			s.httpSpans.Store(serial(ctx), span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			v, ok := s.httpSpans.LoadAndDelete(serial(ctx))
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(
				semconv.HTTPStatusCodeKey.Int(e.Status),
				semconv.HTTPResponseContentLengthKey.Int(e.Bytes),
			)
			if e.Status >= 500 {
				span.SetStatus(codes.Error, "")
			}
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.ShapeStart) {
			key := serial(ctx)
			_, span := s.tracer.Start(s.parent(ctx, key), "shape.generate")
			span.SetAttributes(attribute.String("graphql.schema", e.Schema))
			s.shapeSpans.Store(key, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.ShapeFinish) {
			v, ok := s.shapeSpans.LoadAndDelete(serial(ctx))
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("shape.types", e.Types))
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),

		// merges are short and only reported on completion, so the span is
		// backdated by the measured duration
		eventbus.Subscribe(func(ctx context.Context, e events.MergeFinish) {
			end := time.Now()
			_, span := s.tracer.Start(s.parent(ctx, serial(ctx)), "shape.merge",
				trace.WithTimestamp(end.Add(-e.Duration)))
			span.SetAttributes(
				attribute.Int("shape.types", e.Types),
				attribute.Int("shape.pruned", e.Pruned),
			)
			span.End(trace.WithTimestamp(end))
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}
