package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-emotion-atlas/app/observability/metrics"
	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// Scraper triggers one external review-collection source. Implementations
// live at the collaborator boundary; the service only fans them out.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, city, category string) (int, error)
}

// Processor triggers the external emotion-scoring pipeline over pending raw
// reviews. The scoring model itself is out of scope; scores come back
// pre-computed.
type Processor interface {
	Process(ctx context.Context) (int, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Scrape(ctx context.Context, city, category string) (int, error)
	Process(ctx context.Context) (int, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	scrapers  []Scraper
	processor Processor
}

func NewServiceImpl(scrapers []Scraper, processor Processor, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		scrapers:  scrapers,
		processor: processor,
	}
}

// Scrape triggers every configured source concurrently and returns the
// total number of collected reviews. One failing source fails the run.
func (s *ServiceImpl) Scrape(ctx context.Context, city, category string) (int, error) {
	ctx, span := otel.Tracer("PipelineService").Start(ctx, "Scrape", trace.WithAttributes(
		attribute.String("scrape.city", city),
		attribute.String("scrape.category", category),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Scrape"), slog.String("city", city))

	if city == "" || category == "" {
		span.SetStatus(codes.Error, "Missing city or category")
		return 0, fmt.Errorf("%w: missing city or category", types.ErrValidation)
	}

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, scraper := range s.scrapers {
		g.Go(func() error {
			count, err := scraper.Scrape(gctx, city, category)
			if err != nil {
				return fmt.Errorf("scraper %s: %w", scraper.Name(), err)
			}
			total.Add(int64(count))
			l.InfoContext(gctx, "Scraper finished",
				slog.String("source", scraper.Name()), slog.Int("reviews", count))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Scrape run failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Scrape run failed")
		return 0, err
	}

	metrics.Get().PipelineRunsTotal.Add(ctx, 1)
	span.SetAttributes(attribute.Int64("scrape.total", total.Load()))
	span.SetStatus(codes.Ok, "Scrape run finished")
	return int(total.Load()), nil
}

// Process triggers the scoring pipeline and returns how many reviews it
// ingested scores for.
func (s *ServiceImpl) Process(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("PipelineService").Start(ctx, "Process")
	defer span.End()

	l := s.logger.With(slog.String("method", "Process"))

	count, err := s.processor.Process(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Processing run failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Processing run failed")
		return 0, err
	}

	metrics.Get().PipelineRunsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Processing run finished", slog.Int("processed", count))
	span.SetAttributes(attribute.Int("process.count", count))
	span.SetStatus(codes.Ok, "Processing run finished")
	return count, nil
}
