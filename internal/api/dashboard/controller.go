// Package dashboard orchestrates emotion-filter selection, city search,
// location selection and itinerary composition. The controller is the only
// component that knows the normalizer, the renderer, the ranker, the
// itinerary store and the collaborator client at once.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-emotion-atlas/internal/api/heatmap"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/itinerary"
	"github.com/FACorreiaa/go-emotion-atlas/internal/api/review"
	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// Collaborators is the slice of the HTTP client the controller consumes.
type Collaborators interface {
	Scrape(ctx context.Context, city, category string) error
	Process(ctx context.Context) error
	Heatmap(ctx context.Context, emotion string) (types.HeatmapDataset, error)
	Reviews(ctx context.Context, lat, lng float64) ([]types.Review, error)
}

// Location is the identity of the location currently open in the review panel.
type Location struct {
	Lat  float64
	Lng  float64
	Name string
}

// Controller drives the dashboard. Like the rest of the core it is confined
// to the UI event goroutine; collaborator calls block the caller, not the
// renderer.
type Controller struct {
	logger   *slog.Logger
	api      Collaborators
	renderer *heatmap.Renderer
	store    *itinerary.Store

	emotion string
	city    string

	// Search and the review panel load independently; each track gets its
	// own flag so neither can mask the other's indicator.
	searchLoading   bool
	locationLoading bool

	// Monotonic heatmap fetch tags: a response older than the last applied
	// one is discarded instead of overwriting newer data.
	issuedSeq  uint64
	appliedSeq uint64

	current *Location
	reviews []types.Review
}

// NewController wires the core together. The renderer arrives already bound
// to its viewport handle.
func NewController(api Collaborators, renderer *heatmap.Renderer, store *itinerary.Store, logger *slog.Logger) *Controller {
	return &Controller{
		logger:   logger,
		api:      api,
		renderer: renderer,
		store:    store,
		emotion:  types.DefaultEmotion,
	}
}

// Emotion returns the currently selected emotion filter.
func (c *Controller) Emotion() string { return c.emotion }

// SearchLoading reports whether a city search is in flight.
func (c *Controller) SearchLoading() bool { return c.searchLoading }

// LocationLoading reports whether the review panel is loading.
func (c *Controller) LocationLoading() bool { return c.locationLoading }

// CurrentLocation returns the location open in the review panel, nil when none.
func (c *Controller) CurrentLocation() *Location { return c.current }

// RankedReviews returns the review panel's content ordered by the selected
// emotion's intensity.
func (c *Controller) RankedReviews() []types.Review {
	return review.Rank(c.reviews, c.emotion)
}

// Store exposes the itinerary store for panel interactions (remove, move).
func (c *Controller) Store() *itinerary.Store { return c.store }

// Search runs the full pipeline for a city: scrape, process, then a heatmap
// refetch for the current emotion. A failure at any step aborts the rest
// and leaves the previous heatmap on screen; stale-but-visible is the
// chosen degraded state.
func (c *Controller) Search(ctx context.Context, city, category string) error {
	ctx, span := otel.Tracer("DashboardController").Start(ctx, "Search")
	defer span.End()
	l := c.logger.With(slog.String("method", "Search"), slog.String("city", city))

	if city == "" {
		span.SetStatus(codes.Error, "Missing city")
		return fmt.Errorf("%w: city is required", types.ErrValidation)
	}
	span.SetAttributes(attribute.String("search.city", city), attribute.String("search.category", category))

	c.searchLoading = true
	defer func() { c.searchLoading = false }()
	c.city = city

	if err := c.api.Scrape(ctx, city, category); err != nil {
		l.ErrorContext(ctx, "Scrape step failed, keeping current heatmap", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Scrape failed")
		return err
	}
	if err := c.api.Process(ctx); err != nil {
		l.ErrorContext(ctx, "Process step failed, keeping current heatmap", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Process failed")
		return err
	}
	if err := c.refreshHeatmap(ctx, c.emotion); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Heatmap refetch failed")
		return err
	}

	span.SetStatus(codes.Ok, "Search finished")
	return nil
}

// SelectEmotion switches the emotion filter and refetches only the heatmap.
// The open review panel is untouched; its ranking follows the new emotion
// through RankedReviews.
func (c *Controller) SelectEmotion(ctx context.Context, emotion string) error {
	ctx, span := otel.Tracer("DashboardController").Start(ctx, "SelectEmotion")
	defer span.End()
	span.SetAttributes(attribute.String("heatmap.emotion", emotion))

	c.emotion = emotion
	if err := c.refreshHeatmap(ctx, emotion); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Heatmap refetch failed")
		return err
	}
	span.SetStatus(codes.Ok, "Emotion selected")
	return nil
}

// SelectLocation opens the review panel for a location, replacing its state
// wholesale. A failed fetch keeps the previous panel content.
func (c *Controller) SelectLocation(ctx context.Context, lat, lng float64, name string) error {
	ctx, span := otel.Tracer("DashboardController").Start(ctx, "SelectLocation")
	defer span.End()
	l := c.logger.With(slog.String("method", "SelectLocation"), slog.String("location", name))
	span.SetAttributes(attribute.String("location.name", name))

	c.locationLoading = true
	defer func() { c.locationLoading = false }()

	reviews, err := c.api.Reviews(ctx, lat, lng)
	if err != nil {
		l.ErrorContext(ctx, "Review fetch failed, keeping current panel", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Review fetch failed")
		return err
	}

	c.current = &Location{Lat: lat, Lng: lng, Name: name}
	c.reviews = reviews
	l.InfoContext(ctx, "Location selected", slog.Int("reviews", len(reviews)))
	span.SetStatus(codes.Ok, "Location selected")
	return nil
}

// AddToItinerary adds the currently inspected location to the itinerary,
// carrying the mean score of the selected emotion over the displayed
// reviews. Declines with ErrDuplicate for an already-added coordinate and
// with ErrValidation when no location is open.
func (c *Controller) AddToItinerary() (types.Hotspot, error) {
	if c.current == nil {
		return types.Hotspot{}, fmt.Errorf("%w: no location selected", types.ErrValidation)
	}
	score := itinerary.AggregateScore(c.reviews, c.emotion)
	return c.store.Add(c.current.Name, c.current.Lat, c.current.Lng, c.emotion, score)
}

// SaveItinerary exports the assembled sequence to persistence. The store
// keeps its state on success; clearing is a deliberate user action.
func (c *Controller) SaveItinerary(ctx context.Context) error {
	ctx, span := otel.Tracer("DashboardController").Start(ctx, "SaveItinerary")
	defer span.End()

	if err := c.store.Save(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return err
	}
	span.SetStatus(codes.Ok, "Itinerary saved")
	return nil
}

// refreshHeatmap fetches, normalizes and renders one emotion's dataset.
// Rapid filter clicks issue one request per click and responses may return
// out of order; each request carries a sequence tag and anything older than
// the last applied response is dropped.
func (c *Controller) refreshHeatmap(ctx context.Context, emotion string) error {
	l := c.logger.With(slog.String("method", "refreshHeatmap"), slog.String("emotion", emotion))

	c.issuedSeq++
	seq := c.issuedSeq

	dataset, err := c.api.Heatmap(ctx, emotion)
	if err != nil {
		l.ErrorContext(ctx, "Heatmap fetch failed, keeping current layers", slog.Any("error", err))
		return err
	}
	if seq < c.appliedSeq {
		l.DebugContext(ctx, "Discarding stale heatmap response",
			slog.Uint64("seq", seq), slog.Uint64("applied", c.appliedSeq))
		return nil
	}
	c.appliedSeq = seq

	normalized := heatmap.Normalize(dataset)
	c.renderer.Update(normalized, func(lat, lng float64, name string) {
		if err := c.SelectLocation(ctx, lat, lng, name); err != nil {
			l.WarnContext(ctx, "Marker click selection failed", slog.Any("error", err))
		}
	})
	return nil
}
