package review

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-emotion-atlas/internal/api"
	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetReviewsHandler(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

// GetReviewsHandler handles GET /reviews?location=<lat>,<lng>.
func (h *HandlerImpl) GetReviewsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ReviewHandler").Start(r.Context(), "GetReviews")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetReviewsHandler"))

	location := r.URL.Query().Get("location")
	if location == "" {
		l.WarnContext(ctx, "Missing location parameter")
		span.SetStatus(codes.Error, "Missing location parameter")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing location parameter")
		return
	}
	span.SetAttributes(attribute.String("review.location", location))

	reviews, err := h.service.GetReviewsForLocation(ctx, location)
	if err != nil {
		l.ErrorContext(ctx, "Service failed to fetch reviews", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch reviews")
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []types.Review{}
	}

	l.InfoContext(ctx, "Reviews returned", slog.Int("count", len(reviews)))
	span.SetStatus(codes.Ok, "Reviews returned")
	api.WriteJSONResponse(w, r, http.StatusOK, types.ReviewsResponse{Reviews: reviews})
}
