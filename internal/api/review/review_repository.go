package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

// PGXPool is the pool surface the repository uses, kept narrow for pgxmock.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	// GetReviewsNear returns reviews of venues within radiusKm of the
	// coordinate, with their emotion scores attached.
	GetReviewsNear(ctx context.Context, lat, lng, radiusKm float64) ([]types.Review, error)
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

func (r *PostgresRepository) GetReviewsNear(ctx context.Context, lat, lng, radiusKm float64) ([]types.Review, error) {
	// Haversine in SQL keeps the filter on the database side; the venue set
	// per coordinate key is small enough that no spatial index is needed.
	query := `
        SELECT rv.id, rv.text, to_char(rv.review_date, 'YYYY-MM-DD'), rv.venue_id,
               es.emotion, es.score
        FROM reviews rv
        JOIN venues v ON v.id = rv.venue_id
        LEFT JOIN emotion_scores es ON es.review_id = rv.id
        WHERE 2 * 6371 * asin(sqrt(
                  pow(sin(radians(v.lat - $1) / 2), 2) +
                  cos(radians($1)) * cos(radians(v.lat)) *
                  pow(sin(radians(v.lng - $2) / 2), 2)
              )) <= $3
        ORDER BY rv.review_date DESC, rv.id
    `
	rows, err := r.pgpool.Query(ctx, query, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []types.Review
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, text, date, venueID string
			emotion                 *string
			score                   *float64
		)
		if err := rows.Scan(&id, &text, &date, &venueID, &emotion, &score); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		i, seen := index[id]
		if !seen {
			reviews = append(reviews, types.Review{
				ID:            id,
				Text:          text,
				Date:          date,
				LocationID:    venueID,
				EmotionScores: map[string]float64{},
			})
			i = len(reviews) - 1
			index[id] = i
		}
		if emotion != nil && score != nil {
			reviews[i].EmotionScores[*emotion] = *score
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating reviews: %w", err)
	}
	return reviews, nil
}
