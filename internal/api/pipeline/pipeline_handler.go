package pipeline

import (
	"fmt"
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
	ScrapeHandler(w http.ResponseWriter, r *http.Request)
	ProcessHandler(w http.ResponseWriter, r *http.Request)
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

// ScrapeHandler handles POST /scrape {city, category}.
func (h *HandlerImpl) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PipelineHandler").Start(r.Context(), "Scrape")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ScrapeHandler"))

	var req types.ScrapeRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("scrape.city", req.City),
		attribute.String("scrape.category", req.Category),
	)

	count, err := h.service.Scrape(ctx, req.City, req.Category)
	if err != nil {
		l.ErrorContext(ctx, "Scrape failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Scrape failed")
		api.ErrorResponseFromErr(w, r, err)
		return
	}

	l.InfoContext(ctx, "Scrape triggered", slog.Int("reviews", count))
	span.SetStatus(codes.Ok, "Scrape finished")
	api.WriteJSONResponse(w, r, http.StatusOK, types.PipelineStatus{
		Status:  "success",
		Message: fmt.Sprintf("Scraped %d reviews", count),
	})
}

// ProcessHandler handles POST /process.
func (h *HandlerImpl) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PipelineHandler").Start(r.Context(), "Process")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ProcessHandler"))

	count, err := h.service.Process(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Processing failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Processing failed")
		api.ErrorResponseFromErr(w, r, err)
		return
	}

	l.InfoContext(ctx, "Processing triggered", slog.Int("processed", count))
	span.SetStatus(codes.Ok, "Processing finished")
	api.WriteJSONResponse(w, r, http.StatusOK, types.PipelineStatus{
		Status:         "success",
		ProcessedCount: count,
	})
}
