// Package observes sets up OpenTelemetry trace export.
//
// Spans are started through the global provider, so instrumented code works
// unchanged when NewTracer is never called: the default provider is a no-op.
package observes

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// TracerOption describes the exporter and the traced service.
type TracerOption struct {
	URL                string
	Insecure           bool
	Name               string
	Version            string
	Revision           string
	Environment        string
	SamplingRate       float64
	BatchTimeout       time.Duration
	ExportTimeout      time.Duration
	MaxExportBatchSize int
}

// ShutdownFunc flushes pending spans and stops the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// NewTracer installs a global tracer provider exporting to opt.URL over OTLP
// gRPC. Without a URL nothing is installed and the returned func is a no-op.
func NewTracer(ctx context.Context, opt *TracerOption) (ShutdownFunc, error) {
	if opt == nil {
		return nil, fmt.Errorf("tracer config is nil")
	}
	if opt.URL == "" {
		return noopShutdown, nil
	}

	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opt.URL)}
	if opt.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	exp, err := otlptracegrpc.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(serviceAttributes(opt)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler(opt.SamplingRate)),
		sdktrace.WithBatcher(exp, batchOptions(opt)...),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}

func serviceAttributes(opt *TracerOption) []attribute.KeyValue {
	attrs := []attribute.KeyValue{semconv.ServiceNameKey.String(opt.Name)}
	if opt.Version != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(opt.Version))
	}
	if opt.Revision != "" {
		attrs = append(attrs, attribute.String("revision", opt.Revision))
	}
	if opt.Environment != "" {
		attrs = append(attrs, attribute.String("environment", opt.Environment))
	}
	return attrs
}

// sampler samples by trace id ratio, following the parent's decision.
func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// batchOptions skips zero values so the SDK defaults apply.
func batchOptions(opt *TracerOption) []sdktrace.BatchSpanProcessorOption {
	var opts []sdktrace.BatchSpanProcessorOption
	if opt.MaxExportBatchSize > 0 {
		opts = append(opts, sdktrace.WithMaxExportBatchSize(opt.MaxExportBatchSize))
	}
	if opt.BatchTimeout > 0 {
		opts = append(opts, sdktrace.WithBatchTimeout(opt.BatchTimeout))
	}
	if opt.ExportTimeout > 0 {
		opts = append(opts, sdktrace.WithExportTimeout(opt.ExportTimeout))
	}
	return opts
}
