package observability

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/yungbote/northstar-backend/internal/platform/envutil"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

// exportEnv is the OTEL_* environment consulted at startup.
type exportEnv struct {
	enabled         bool
	traceEndpoint   string
	metricsEndpoint string
	insecure        bool
	headers         map[string]string
	sampleRatio     float64
}

func loadExportEnv() exportEnv {
	ratio := envutil.Float("OTEL_SAMPLER_RATIO", 0.1)
	switch {
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	return exportEnv{
		enabled:         envutil.Bool("OTEL_ENABLED", false),
		traceEndpoint:   envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		metricsEndpoint: envutil.String("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", ""),
		insecure:        envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		headers:         parseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
		sampleRatio:     ratio,
	}
}

// parseHeaders reads "k1=v1,k2=v2". Malformed pairs are skipped.
func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if ok && key != "" && val != "" {
			headers[key] = val
		}
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

var (
	otelOnce     sync.Once
	otelShutdown = func(context.Context) error { return nil }
)

// InitOTel installs global tracer and meter providers when OTEL_ENABLED is set.
// The returned func flushes and stops both. Exporter failures are logged and
// leave the providers running without that exporter.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		env := loadExportEnv()
		if !env.enabled {
			return
		}
		if log == nil {
			log = logger.Nop()
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "northstar-api"
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		))
		if err != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		tpOpts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(env.sampleRatio))),
			sdktrace.WithResource(res),
		}
		if exporter, err := env.traceExporter(ctx); err != nil {
			log.Warn("otel trace exporter init failed (continuing)", "error", err)
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}
		tp := sdktrace.NewTracerProvider(tpOpts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

		mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
		if env.metricsEndpoint != "" {
			if exp, err := env.metricExporter(ctx); err != nil {
				log.Warn("otel metric exporter init failed (continuing)", "error", err)
			} else {
				mpOpts = append(mpOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(30*time.Second))))
			}
		}
		mp := sdkmetric.NewMeterProvider(mpOpts...)
		otel.SetMeterProvider(mp)

		otelShutdown = func(ctx context.Context) error {
			return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
		}
		log.Info("otel initialized",
			"service", serviceName,
			"trace_endpoint", env.traceEndpoint,
			"metrics_endpoint", env.metricsEndpoint,
		)
	})
	return otelShutdown
}

// traceExporter prefers OTLP/HTTP and falls back to pretty-printed stdout.
func (e exportEnv) traceExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if e.traceEndpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(e.traceEndpoint)}
	if e.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if e.headers != nil {
		opts = append(opts, otlptracehttp.WithHeaders(e.headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

func (e exportEnv) metricExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(e.metricsEndpoint)}
	if e.insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	if e.headers != nil {
		opts = append(opts, otlpmetricgrpc.WithHeaders(e.headers))
	}
	return otlpmetricgrpc.New(ctx, opts...)
}
