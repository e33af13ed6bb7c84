package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-emotion-atlas/app/db"
	"github.com/FACorreiaa/go-emotion-atlas/config"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/heatmap"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/itinerary"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/pipeline"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/review"
	"github.com/FACorreiaa/go-emotion-atlas/internal/client"
)

// Container holds all application dependencies.
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	HeatmapHandler   *heatmap.HandlerImpl
	ReviewHandler    *review.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	PipelineHandler  *pipeline.HandlerImpl
}

// NewContainer initializes and returns a new dependency container.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	heatmapRepo := heatmap.NewPostgresRepository(pool, logger)
	heatmapService := heatmap.NewServiceImpl(heatmapRepo, logger)
	heatmapHandler := heatmap.NewHandlerImpl(heatmapService, logger)

	reviewRepo := review.NewPostgresRepository(pool, logger)
	reviewService := review.NewServiceImpl(reviewRepo, logger)
	reviewHandler := review.NewHandlerImpl(reviewService, logger)

	itineraryRepo := itinerary.NewPostgresRepository(pool, logger)
	itineraryService := itinerary.NewServiceImpl(itineraryRepo, logger)
	itineraryHandler := itinerary.NewHandlerImpl(itineraryService, logger)

	scrapers := []pipeline.Scraper{
		client.NewHTTPScraper("tripadvisor", cfg.Collaborators.TripadvisorURL, logger),
		client.NewHTTPScraper("reddit", cfg.Collaborators.RedditURL, logger),
	}
	processor := client.NewHTTPProcessor(cfg.Collaborators.ProcessorURL, logger)
	pipelineService := pipeline.NewServiceImpl(scrapers, processor, logger)
	pipelineHandler := pipeline.NewHandlerImpl(pipelineService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		HeatmapHandler:   heatmapHandler,
		ReviewHandler:    reviewHandler,
		ItineraryHandler: itineraryHandler,
		PipelineHandler:  pipelineHandler,
	}, nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready.
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations.
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
