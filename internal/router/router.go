package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-emotion-atlas/internal/api/heatmap"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/itinerary"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/pipeline"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/review"
)

// Config contains the handlers the router wires up. Auth token issuance
// lives in the external auth service; only validation middleware is applied
// here.
type Config struct {
	HeatmapHandler         *heatmap.HandlerImpl
	ReviewHandler          *review.HandlerImpl
	ItineraryHandler       *itinerary.HandlerImpl
	PipelineHandler        *pipeline.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter mounts the collaborator endpoints. Server-wide middleware
// (logger, requestID, recoverer) is applied before mounting in main.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// Heatmap and review fetches are readable without a session so the
	// dashboard can show demo data pre-login; everything that mutates
	// state requires one.
	r.Group(func(r chi.Router) {
		r.Get("/heatmap", cfg.HeatmapHandler.GetHeatmapHandler)
		r.Get("/reviews", cfg.ReviewHandler.GetReviewsHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.AuthenticateMiddleware)

		r.Post("/scrape", cfg.PipelineHandler.ScrapeHandler)
		r.Post("/process", cfg.PipelineHandler.ProcessHandler)
		r.Post("/itineraries", cfg.ItineraryHandler.CreateItineraryHandler)
		r.Get("/itineraries", cfg.ItineraryHandler.GetItinerariesHandler)
	})

	return r
}
