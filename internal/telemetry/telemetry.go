// Package telemetry holds the OpenTelemetry instruments shared by the store
// client, the fetch controller and the list manager. Instruments are bound to
// the global providers, so they are no-ops until a provider is installed.
package telemetry

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scope = "gallery"

var (
	Tracer = otel.Tracer(scope)
	meter  = otel.Meter(scope)

	FetchAttempts, _ = meter.Int64Counter("gallery.fetch.attempts",
		metric.WithDescription("Store query attempts, by outcome"),
	)
	FetchCycleDuration, _ = meter.Float64Histogram("gallery.fetch.cycle.duration",
		metric.WithDescription("Time from cycle start to settle"),
		metric.WithUnit("s"),
	)
	ListMutations, _ = meter.Int64Counter("gallery.list.mutations",
		metric.WithDescription("List mutations, by operation and outcome"),
	)
)

// Transport wraps base with HTTP client spans and metrics.
func Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "store " + r.Method + " " + r.URL.Path
		}),
	)
}
