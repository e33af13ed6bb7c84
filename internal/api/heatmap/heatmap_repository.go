package heatmap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// PGXPool is the slice of pgxpool.Pool the repository needs. Narrowed to an
// interface so pgxmock can stand in during tests.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	GetNeighborhoods(ctx context.Context) ([]types.Neighborhood, error)
	GetVenues(ctx context.Context) ([]types.Venue, error)
	GetEmotionScores(ctx context.Context, emotion string, venueIDs []string) ([]float64, error)
	UpsertHotspot(ctx context.Context, neighborhoodID, emotion string, averageScore float64, reviewCount int) error
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresRepository(pgpool PGXPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) GetNeighborhoods(ctx context.Context) ([]types.Neighborhood, error) {
	query := `
        SELECT id, name, city, center_lat, center_lng
        FROM neighborhoods
        ORDER BY name
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighborhoods: %w", err)
	}
	defer rows.Close()

	var neighborhoods []types.Neighborhood
	for rows.Next() {
		var n types.Neighborhood
		if err := rows.Scan(&n.ID, &n.Name, &n.City, &n.Lat, &n.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan neighborhood: %w", err)
		}
		neighborhoods = append(neighborhoods, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating neighborhoods: %w", err)
	}
	return neighborhoods, nil
}

func (r *PostgresRepository) GetVenues(ctx context.Context) ([]types.Venue, error) {
	query := `
        SELECT id, name, lat, lng, category, city
        FROM venues
    `
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	var venues []types.Venue
	for rows.Next() {
		var v types.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Lat, &v.Lng, &v.Category, &v.City); err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating venues: %w", err)
	}
	return venues, nil
}

func (r *PostgresRepository) GetEmotionScores(ctx context.Context, emotion string, venueIDs []string) ([]float64, error) {
	if len(venueIDs) == 0 {
		return nil, nil
	}
	query := `
        SELECT es.score
        FROM emotion_scores es
        JOIN reviews rv ON rv.id = es.review_id
        WHERE es.emotion = $1 AND rv.venue_id = ANY($2)
    `
	rows, err := r.pgpool.Query(ctx, query, emotion, venueIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion scores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan emotion score: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating emotion scores: %w", err)
	}
	return scores, nil
}

func (r *PostgresRepository) UpsertHotspot(ctx context.Context, neighborhoodID, emotion string, averageScore float64, reviewCount int) error {
	query := `
        INSERT INTO emotional_hotspots (neighborhood_id, emotion, average_score, review_count, last_updated)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (neighborhood_id, emotion)
        DO UPDATE SET average_score = EXCLUDED.average_score,
                      review_count  = EXCLUDED.review_count,
                      last_updated  = now()
    `
	if _, err := r.pgpool.Exec(ctx, query, neighborhoodID, emotion, averageScore, reviewCount); err != nil {
		return fmt.Errorf("failed to upsert hotspot: %w", err)
	}
	return nil
}
