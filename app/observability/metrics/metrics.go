package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	PlaceSearchRequestsTotal   metric.Int64Counter
	PlaceSearchErrorsTotal     metric.Int64Counter
	PlaceSearchDurationSeconds metric.Float64Histogram
	ProviderCallsTotal         metric.Int64Counter
	ProviderErrorsTotal        metric.Int64Counter
	LLMRequestsTotal           metric.Int64Counter
	LLMErrorsTotal             metric.Int64Counter
	LLMRequestDurationSeconds  metric.Float64Histogram
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TravelBuddy")
		var err error
		m := &AppMetrics{}

		m.PlaceSearchRequestsTotal, err = meter.Int64Counter(
			"place_search_requests_total",
			metric.WithDescription("Total number of place search requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_search_requests_total: %v", err)
		}

		m.PlaceSearchErrorsTotal, err = meter.Int64Counter(
			"place_search_errors_total",
			metric.WithDescription("Total number of failed place searches"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_search_errors_total: %v", err)
		}

		m.PlaceSearchDurationSeconds, err = meter.Float64Histogram(
			"place_search_duration_seconds",
			metric.WithDescription("Duration of place searches in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_search_duration_seconds: %v", err)
		}

		m.ProviderCallsTotal, err = meter.Int64Counter(
			"geo_provider_calls_total",
			metric.WithDescription("Total number of outbound geo-search provider calls"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geo_provider_calls_total: %v", err)
		}

		m.ProviderErrorsTotal, err = meter.Int64Counter(
			"geo_provider_errors_total",
			metric.WithDescription("Total number of geo-search provider call errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geo_provider_errors_total: %v", err)
		}

		m.LLMRequestsTotal, err = meter.Int64Counter(
			"llm_requests_total",
			metric.WithDescription("Total number of LLM chat-completion requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_requests_total: %v", err)
		}

		m.LLMErrorsTotal, err = meter.Int64Counter(
			"llm_errors_total",
			metric.WithDescription("Total number of failed LLM requests"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_errors_total: %v", err)
		}

		m.LLMRequestDurationSeconds, err = meter.Float64Histogram(
			"llm_request_duration_seconds",
			metric.WithDescription("Duration of LLM requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_request_duration_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, or nil when
// InitAppMetrics was never called (unit tests). Callers tolerate nil.
func Get() *AppMetrics {
	return appMetrics
}
