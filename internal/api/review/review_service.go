package review

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// Reviews for a coordinate key come from venues within this radius.
const locationRadiusKm = 2.0

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetReviewsForLocation(ctx context.Context, location string) ([]types.Review, error)
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

// GetReviewsForLocation resolves a "lat,lng" coordinate key and returns the
// reviews of venues around it.
func (s *ServiceImpl) GetReviewsForLocation(ctx context.Context, location string) ([]types.Review, error) {
	ctx, span := otel.Tracer("ReviewService").Start(ctx, "GetReviewsForLocation", trace.WithAttributes(
		attribute.String("review.location", location),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetReviewsForLocation"), slog.String("location", location))

	lat, lng, err := ParseLocation(location)
	if err != nil {
		l.WarnContext(ctx, "Invalid location key", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid location key")
		return nil, err
	}

	reviews, err := s.repo.GetReviewsNear(ctx, lat, lng, locationRadiusKm)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch reviews", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Repository failed")
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	l.InfoContext(ctx, "Reviews fetched", slog.Int("count", len(reviews)))
	span.SetAttributes(attribute.Int("review.count", len(reviews)))
	span.SetStatus(codes.Ok, "Reviews fetched")
	return reviews, nil
}

// ParseLocation splits a "lat,lng" coordinate key.
func ParseLocation(location string) (lat, lng float64, err error) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: location must be \"lat,lng\"", types.ErrValidation)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid latitude %q", types.ErrValidation, parts[0])
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid longitude %q", types.ErrValidation, parts[1])
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("%w: coordinate out of range", types.ErrValidation)
	}
	return lat, lng, nil
}
