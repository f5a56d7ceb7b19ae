package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// Metrics bundles the OpenTelemetry meter provider with the HTTP handler that
// serves its Prometheus exposition.
type Metrics struct {
	Provider *sdkmetric.MeterProvider
	Handler  http.Handler
}

// Meter returns a named meter from the provider.
func (m *Metrics) Meter(name string) metric.Meter {
	return m.Provider.Meter(name)
}

// InitMetrics initializes an OpenTelemetry meter provider backed by a
// dedicated Prometheus registry, so repeated calls (e.g. in tests) do not
// collide on the global registry.
func InitMetrics(_ MetricsConfig) (*Metrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("observability: prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return &Metrics{
		Provider: provider,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}, nil
}
