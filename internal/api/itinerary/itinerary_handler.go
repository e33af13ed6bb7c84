package itinerary

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	appMiddleware "github.com/FACorreiaa/go-emotion-atlas/app/middleware"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api"
	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateItineraryHandler(w http.ResponseWriter, r *http.Request)
	GetItinerariesHandler(w http.ResponseWriter, r *http.Request)
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

// CreateItineraryHandler handles POST /itineraries. The hotspot_ids array
// order encodes the user's chosen sequence.
func (h *HandlerImpl) CreateItineraryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "CreateItinerary")
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateItineraryHandler"))

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized - User ID missing")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	var req types.CreateItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.Int("itinerary.hotspots", len(req.HotspotIDs)))

	itinerary, err := h.service.CreateItinerary(ctx, userID, req.HotspotIDs)
	if err != nil {
		l.ErrorContext(ctx, "Service failed to create itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create itinerary")
		api.ErrorResponseFromErr(w, r, err)
		return
	}

	l.InfoContext(ctx, "Itinerary created", slog.String("itinerary_id", itinerary.ID))
	span.SetAttributes(attribute.String("itinerary.id", itinerary.ID))
	span.SetStatus(codes.Ok, "Itinerary created")
	api.WriteJSONResponse(w, r, http.StatusCreated, itinerary)
}

// GetItinerariesHandler handles GET /itineraries.
func (h *HandlerImpl) GetItinerariesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItineraries")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetItinerariesHandler"))

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized - User ID missing")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	itineraries, err := h.service.GetItineraries(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Service failed to fetch itineraries", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch itineraries")
		api.ErrorResponseFromErr(w, r, err)
		return
	}
	if itineraries == nil {
		itineraries = []types.Itinerary{}
	}

	span.SetStatus(codes.Ok, "Itineraries returned")
	api.WriteJSONResponse(w, r, http.StatusOK, itineraries)
}
