package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
)

const meterName = "github.com/yungbote/northstar-backend"

// Metrics holds the service's instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests        metric.Int64Counter
	apiLatency         metric.Float64Histogram
	apiInflight        metric.Int64UpDownCounter
	categoryGap        metric.Int64Counter
	generationFallback metric.Int64Counter
	generationLatency  metric.Float64Histogram
	plansCreated       metric.Int64Counter

	alerts *QualityAlerts
}

// NewMetrics creates instruments from provider, or the global provider when nil.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)
	m := &Metrics{}
	var err error
	if m.apiRequests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests by route and status")); err != nil {
		return nil, err
	}
	if m.apiLatency, err = meter.Float64Histogram("http.server.duration",
		metric.WithUnit("s"), metric.WithDescription("HTTP request latency")); err != nil {
		return nil, err
	}
	if m.apiInflight, err = meter.Int64UpDownCounter("http.server.inflight"); err != nil {
		return nil, err
	}
	if m.categoryGap, err = meter.Int64Counter("habits.category_gap",
		metric.WithDescription("Normalized habit sets missing a category")); err != nil {
		return nil, err
	}
	if m.generationFallback, err = meter.Int64Counter("habits.generation_fallback",
		metric.WithDescription("Generations served from the built-in habit set, by reason")); err != nil {
		return nil, err
	}
	if m.generationLatency, err = meter.Float64Histogram("habits.generation.duration",
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.plansCreated, err = meter.Int64Counter("habits.plans_created"); err != nil {
		return nil, err
	}
	return m, nil
}

// SetAlerts forwards fallbacks and category gaps to a.
func (m *Metrics) SetAlerts(a *QualityAlerts) {
	if m == nil {
		return
	}
	m.alerts = a
}

func (m *Metrics) ObserveAPI(ctx context.Context, method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.apiRequests.Add(ctx, 1, attrs)
	m.apiLatency.Record(ctx, dur.Seconds(), attrs)
}

func (m *Metrics) APIInflight(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(ctx, delta)
}

func (m *Metrics) RecordCategoryGap(ctx context.Context, missing []habits.Category) {
	if m == nil {
		return
	}
	for _, c := range missing {
		m.categoryGap.Add(ctx, 1, metric.WithAttributes(attribute.String("category", string(c))))
	}
	m.alerts.ReportCategoryGap(ctx, missing)
}

func (m *Metrics) RecordGeneration(ctx context.Context, source string, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.generationLatency.Record(ctx, dur.Seconds(), attrs)
	if source != "model" {
		m.generationFallback.Add(ctx, 1, attrs)
	}
	m.alerts.ReportFallback(ctx, source)
}

func (m *Metrics) IncPlansCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.plansCreated.Add(ctx, 1)
}
