package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, cfg *Config, info ServiceInfo) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(info)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.ExportInterval()))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Outcome values shared by the auth counters.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid_input"
	OutcomeFailure = "error"
)

// AuthMetrics counts credential issuance and guard decisions.
// A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	register     metric.Int64Counter
	login        metric.Int64Counter
	guard        metric.Int64Counter
	hashDuration metric.Float64Histogram
}

// NewAuthMetrics creates the auth instruments on the given meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	register, err := meter.Int64Counter("auth.register",
		metric.WithDescription("Registration attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.register counter: %w", err)
	}

	login, err := meter.Int64Counter("auth.login",
		metric.WithDescription("Login attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.login counter: %w", err)
	}

	guard, err := meter.Int64Counter("auth.guard",
		metric.WithDescription("Route guard decisions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.guard counter: %w", err)
	}

	hashDuration, err := meter.Float64Histogram("auth.password.duration",
		metric.WithDescription("Duration of password hashing and verification in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.password.duration histogram: %w", err)
	}

	return &AuthMetrics{
		register:     register,
		login:        login,
		guard:        guard,
		hashDuration: hashDuration,
	}, nil
}

// RecordRegister counts a registration attempt.
func (m *AuthMetrics) RecordRegister(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.register.Add(ctx, 1, outcomeAttr(outcome))
}

// RecordLogin counts a login attempt.
func (m *AuthMetrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.login.Add(ctx, 1, outcomeAttr(outcome))
}

// RecordGuard counts a guard decision.
func (m *AuthMetrics) RecordGuard(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.guard.Add(ctx, 1, outcomeAttr(outcome))
}

// RecordPassword records how long a hash ("hash") or verify ("verify") took.
func (m *AuthMetrics) RecordPassword(ctx context.Context, op string, d time.Duration) {
	if m == nil {
		return
	}
	m.hashDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("op", op)))
}

func outcomeAttr(outcome string) metric.AddOption {
	return metric.WithAttributes(attribute.String(AttrOutcome, outcome))
}

// HTTPMetrics holds the request instruments used by the server middleware.
type HTTPMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
}

// NewHTTPMetrics creates request instruments on the given meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestTotal, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("http.server.request.active",
		metric.WithDescription("Number of currently active requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.active gauge: %w", err)
	}

	return &HTTPMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
	}, nil
}

// RecordRequestStart increments the active request count.
func (m *HTTPMetrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the completed request.
func (m *HTTPMetrics) RecordRequestEnd(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrRoute, route),
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.Int(AttrStatus, status))...))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
