package heatmap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang/geo/s2"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-emotion-atlas/app/observability/metrics"
	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

const (
	// Venues within this great-circle distance of a neighborhood center
	// contribute to its score.
	nearbyRadiusKm = 2.0
	earthRadiusKm  = 6371.0

	cacheTTL = 5 * time.Minute
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Generate(ctx context.Context, emotion string) (*types.FeatureCollection, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

// NewServiceImpl creates the heatmap generation service. Generated datasets
// are cached per emotion so rapid filter clicks do not re-aggregate.
func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(cacheTTL, 10*time.Minute),
	}
}

// Generate builds the GeoJSON heatmap for one emotion: per neighborhood,
// the mean score of that emotion over reviews of venues within 2 km of the
// neighborhood center. Aggregates are also upserted as hotspot rows. When
// no data is available the canned demo collection is returned so the map
// never goes blank.
func (s *ServiceImpl) Generate(ctx context.Context, emotion string) (*types.FeatureCollection, error) {
	ctx, span := otel.Tracer("HeatmapService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("heatmap.emotion", emotion),
	))
	defer span.End()
	start := time.Now()

	l := s.logger.With(slog.String("method", "Generate"), slog.String("emotion", emotion))

	cacheKey := "heatmap:" + emotion
	if cached, found := s.cache.Get(cacheKey); found {
		l.DebugContext(ctx, "Heatmap served from cache")
		span.SetStatus(codes.Ok, "Cache hit")
		return cached.(*types.FeatureCollection), nil
	}

	scores, err := s.neighborhoodScores(ctx, emotion)
	if err != nil {
		l.ErrorContext(ctx, "Failed to aggregate neighborhood scores, serving fallback", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Aggregation failed")
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fallbackCollection(emotion), nil
	}
	if len(scores) == 0 {
		l.InfoContext(ctx, "No neighborhood data available, serving fallback")
		span.SetStatus(codes.Ok, "Fallback served")
		return fallbackCollection(emotion), nil
	}

	for _, ns := range scores {
		if err := s.repo.UpsertHotspot(ctx, ns.neighborhood.ID, emotion, ns.average, ns.reviewCount); err != nil {
			// Aggregation already succeeded; a failed upsert must not take
			// the heatmap down with it.
			l.WarnContext(ctx, "Failed to upsert hotspot",
				slog.String("neighborhood", ns.neighborhood.Name), slog.Any("error", err))
		}
	}

	fc := buildCollection(emotion, scores)
	s.cache.Set(cacheKey, fc, cache.DefaultExpiration)

	metrics.Get().HeatmapRequestsTotal.Add(ctx, 1)
	metrics.Get().HeatmapDurationSeconds.Record(ctx, time.Since(start).Seconds())

	l.InfoContext(ctx, "Heatmap generated", slog.Int("features", len(fc.Features)))
	span.SetAttributes(attribute.Int("heatmap.features", len(fc.Features)))
	span.SetStatus(codes.Ok, "Heatmap generated")
	return fc, nil
}

type neighborhoodScore struct {
	neighborhood types.Neighborhood
	average      float64
	reviewCount  int
}

func (s *ServiceImpl) neighborhoodScores(ctx context.Context, emotion string) ([]neighborhoodScore, error) {
	neighborhoods, err := s.repo.GetNeighborhoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load neighborhoods: %w", err)
	}
	venues, err := s.repo.GetVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load venues: %w", err)
	}

	var results []neighborhoodScore
	for _, n := range neighborhoods {
		var nearby []string
		for _, v := range venues {
			if haversineKm(n.Lat, n.Lng, v.Lat, v.Lng) <= nearbyRadiusKm {
				nearby = append(nearby, v.ID)
			}
		}
		if len(nearby) == 0 {
			continue
		}

		scores, err := s.repo.GetEmotionScores(ctx, emotion, nearby)
		if err != nil {
			return nil, fmt.Errorf("failed to load scores for %s: %w", n.Name, err)
		}
		if len(scores) == 0 {
			continue
		}

		var sum float64
		for _, sc := range scores {
			sum += sc
		}
		results = append(results, neighborhoodScore{
			neighborhood: n,
			average:      sum / float64(len(scores)),
			reviewCount:  len(scores),
		})
	}
	return results, nil
}

func buildCollection(emotion string, scores []neighborhoodScore) *types.FeatureCollection {
	features := make([]types.Feature, 0, len(scores))
	for _, ns := range scores {
		score := ns.average
		weight := ns.average * 10 // scale for heat intensity
		features = append(features, types.Feature{
			Type: "Feature",
			Geometry: types.Geometry{
				Type:        "Point",
				Coordinates: []float64{ns.neighborhood.Lng, ns.neighborhood.Lat},
			},
			Properties: types.FeatureProperties{
				Neighborhood: ns.neighborhood.Name,
				Emotion:      emotion,
				Score:        &score,
				Weight:       &weight,
				ReviewCount:  ns.reviewCount,
			},
		})
	}
	return &types.FeatureCollection{Type: "FeatureCollection", Features: features}
}

// fallbackCollection is the demo dataset served when generation fails or no
// scraped data exists yet. Landmark set and synthetic counts are part of
// the observable contract.
func fallbackCollection(emotion string) *types.FeatureCollection {
	demo := []struct {
		name     string
		lat, lng float64
		score    float64
	}{
		{"Central London", 51.5074, -0.1278, 0.85},
		{"Westminster", 51.5012, -0.1426, 0.75},
		{"Shoreditch", 51.5177, -0.0753, 0.92},
		{"Camden", 51.5390, -0.1427, 0.88},
		{"South Bank", 51.5050, -0.1167, 0.79},
	}

	features := make([]types.Feature, 0, len(demo))
	for _, d := range demo {
		score := d.score
		weight := d.score * 10
		features = append(features, types.Feature{
			Type: "Feature",
			Geometry: types.Geometry{
				Type:        "Point",
				Coordinates: []float64{d.lng, d.lat},
			},
			Properties: types.FeatureProperties{
				Neighborhood: d.name,
				Emotion:      emotion,
				Score:        &score,
				Weight:       &weight,
				ReviewCount:  int(d.score * 50),
			},
		})
	}
	return &types.FeatureCollection{Type: "FeatureCollection", Features: features}
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * earthRadiusKm
}
