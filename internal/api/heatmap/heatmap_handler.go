package heatmap

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
	GetHeatmapHandler(w http.ResponseWriter, r *http.Request)
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

// GetHeatmapHandler handles GET /heatmap?emotion=<name>. The emotion
// defaults to joy when absent, matching what the dashboard has always sent.
func (h *HandlerImpl) GetHeatmapHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HeatmapHandler").Start(r.Context(), "GetHeatmap")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetHeatmapHandler"))

	emotion := r.URL.Query().Get("emotion")
	if emotion == "" {
		emotion = types.DefaultEmotion
	}
	span.SetAttributes(attribute.String("heatmap.emotion", emotion))

	fc, err := h.service.Generate(ctx, emotion)
	if err != nil {
		l.ErrorContext(ctx, "Service failed to generate heatmap", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Heatmap generation failed")
		api.ErrorResponseFromErr(w, r, err)
		return
	}

	l.InfoContext(ctx, "Heatmap returned",
		slog.String("emotion", emotion), slog.Int("features", len(fc.Features)))
	span.SetStatus(codes.Ok, "Heatmap returned")
	api.WriteJSONResponse(w, r, http.StatusOK, fc)
}
