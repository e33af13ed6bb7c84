package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HeatmapRequestsTotal   metric.Int64Counter
	HeatmapDurationSeconds metric.Float64Histogram
	ItinerarySavesTotal    metric.Int64Counter
	PipelineRunsTotal      metric.Int64Counter
	DbQueryErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get returns the global metrics instruments, creating them on first use
// from the globally configured MeterProvider. Before the provider is set up
// (tests, early startup) the instruments come from the no-op provider.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("EmotionAtlas")
		var err error
		m := &AppMetrics{}

		m.HeatmapRequestsTotal, err = meter.Int64Counter(
			"heatmap_requests_total",
			metric.WithDescription("Total number of heatmap generations served"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create heatmap_requests_total: %v", err)
		}

		m.HeatmapDurationSeconds, err = meter.Float64Histogram(
			"heatmap_duration_seconds",
			metric.WithDescription("Duration of heatmap generation in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create heatmap_duration_seconds: %v", err)
		}

		m.ItinerarySavesTotal, err = meter.Int64Counter(
			"itinerary_saves_total",
			metric.WithDescription("Total number of itineraries persisted"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_saves_total: %v", err)
		}

		m.PipelineRunsTotal, err = meter.Int64Counter(
			"pipeline_runs_total",
			metric.WithDescription("Total number of scrape/process pipeline runs"),
			metric.WithUnit("{run}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_runs_total: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
