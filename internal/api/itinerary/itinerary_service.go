package itinerary

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-emotion-atlas/app/observability/metrics"
	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateItinerary(ctx context.Context, userID string, hotspotIDs []string) (*types.Itinerary, error)
	GetItineraries(ctx context.Context, userID string) ([]types.Itinerary, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// CreateItinerary persists one ordered hotspot sequence for the user.
func (s *ServiceImpl) CreateItinerary(ctx context.Context, userID string, hotspotIDs []string) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateItinerary", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("itinerary.hotspots", len(hotspotIDs)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateItinerary"), slog.String("userID", userID))

	if len(hotspotIDs) == 0 {
		span.SetStatus(codes.Error, "Empty itinerary")
		return nil, fmt.Errorf("%w: itinerary must contain at least one hotspot", types.ErrValidation)
	}

	itinerary, err := s.repo.CreateItinerary(ctx, userID, hotspotIDs)
	if err != nil {
		l.ErrorContext(ctx, "Failed to persist itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to persist itinerary")
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to persist itinerary: %w", err)
	}

	metrics.Get().ItinerarySavesTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Itinerary persisted", slog.String("itineraryID", itinerary.ID))
	span.SetAttributes(attribute.String("itinerary.id", itinerary.ID))
	span.SetStatus(codes.Ok, "Itinerary persisted")
	return itinerary, nil
}

func (s *ServiceImpl) GetItineraries(ctx context.Context, userID string) ([]types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItineraries", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetItineraries"), slog.String("userID", userID))

	itineraries, err := s.repo.GetItineraries(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch itineraries", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch itineraries")
		return nil, fmt.Errorf("failed to fetch itineraries: %w", err)
	}

	span.SetAttributes(attribute.Int("itinerary.count", len(itineraries)))
	span.SetStatus(codes.Ok, "Itineraries fetched")
	return itineraries, nil
}
