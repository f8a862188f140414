// Package metrics defines the OpenTelemetry instruments of the calculator
// service and exports them through a Prometheus registry.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// MeterName is the instrumentation scope of all calculator instruments.
const MeterName = "calculator"

// NewMeterProvider returns a meter provider whose readings are collected by reg.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Calculator holds the instruments recorded by the session manager.
type Calculator struct {
	inputs        metric.Int64Counter
	errors        metric.Int64Counter
	pressDuration metric.Float64Histogram
}

// NewCalculator creates the calculator instruments on mp. liveSessions is polled
// on every collection to report the number of open sessions; it may be nil.
func NewCalculator(mp metric.MeterProvider, liveSessions func(ctx context.Context) int) (*Calculator, error) {
	meter := mp.Meter(MeterName)

	inputs, err := meter.Int64Counter("calculator.inputs",
		metric.WithDescription("Number of keypad inputs applied to sessions."),
		metric.WithUnit("{input}"))
	if err != nil {
		return nil, fmt.Errorf("could not create inputs counter: %w", err)
	}

	errs, err := meter.Int64Counter("calculator.errors",
		metric.WithDescription("Number of computations that ended in the error state."),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, fmt.Errorf("could not create errors counter: %w", err)
	}

	pressDuration, err := meter.Float64Histogram("calculator.press.duration",
		metric.WithDescription("Time spent applying one batch of inputs to a session."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create press duration histogram: %w", err)
	}

	if liveSessions != nil {
		_, err = meter.Int64ObservableGauge("calculator.sessions",
			metric.WithDescription("Number of open calculator sessions."),
			metric.WithUnit("{session}"),
			metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
				o.Observe(int64(liveSessions(ctx)))

				return nil
			}))
		if err != nil {
			return nil, fmt.Errorf("could not create sessions gauge: %w", err)
		}
	}

	return &Calculator{
		inputs:        inputs,
		errors:        errs,
		pressDuration: pressDuration,
	}, nil
}

// Input counts one applied input of the given kind.
func (c *Calculator) Input(ctx context.Context, kind string) {
	if c == nil {
		return
	}
	c.inputs.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Error counts a computation that produced the error display.
func (c *Calculator) Error(ctx context.Context, operation string) {
	if c == nil {
		return
	}
	c.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// PressDuration records how long a batch of inputs took, in seconds.
func (c *Calculator) PressDuration(ctx context.Context, seconds float64) {
	if c == nil {
		return
	}
	c.pressDuration.Record(ctx, seconds)
}

// HTTP holds the instruments recorded by the HTTP middleware.
type HTTP struct {
	duration metric.Float64Histogram
}

// NewHTTP creates the HTTP server instruments on mp.
func NewHTTP(mp metric.MeterProvider) (*HTTP, error) {
	duration, err := mp.Meter(MeterName).Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create request duration histogram: %w", err)
	}

	return &HTTP{duration: duration}, nil
}

// Request records one served request.
func (h *HTTP) Request(ctx context.Context, method string, status int, seconds float64) {
	if h == nil {
		return
	}
	h.duration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	))
}
