package itinerary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FACorreiaa/go-emotion-atlas/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	CreateItinerary(ctx context.Context, userID string, hotspotIDs []string) (*types.Itinerary, error)
	GetItineraries(ctx context.Context, userID string) ([]types.Itinerary, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

// CreateItinerary persists the ordered hotspot sequence in one transaction;
// item position encodes the user's chosen order.
func (r *PostgresRepository) CreateItinerary(ctx context.Context, userID string, hotspotIDs []string) (*types.Itinerary, error) {
	tx, err := r.pgpool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	itinerary := types.Itinerary{
		ID:         uuid.New().String(),
		UserID:     userID,
		HotspotIDs: hotspotIDs,
	}

	query := `
        INSERT INTO itineraries (id, user_id)
        VALUES ($1, $2)
        RETURNING created_at
    `
	if err = tx.QueryRow(ctx, query, itinerary.ID, userID).Scan(&itinerary.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}

	itemQuery := `
        INSERT INTO itinerary_items (itinerary_id, hotspot_id, position)
        VALUES ($1, $2, $3)
    `
	for position, hotspotID := range hotspotIDs {
		if _, err = tx.Exec(ctx, itemQuery, itinerary.ID, hotspotID, position); err != nil {
			return nil, fmt.Errorf("failed to insert itinerary item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &itinerary, nil
}

func (r *PostgresRepository) GetItineraries(ctx context.Context, userID string) ([]types.Itinerary, error) {
	query := `
        SELECT i.id, i.user_id, i.created_at, it.hotspot_id
        FROM itineraries i
        JOIN itinerary_items it ON it.itinerary_id = i.id
        WHERE i.user_id = $1
        ORDER BY i.created_at DESC, it.position
    `
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itineraries: %w", err)
	}
	defer rows.Close()

	var itineraries []types.Itinerary
	index := make(map[string]int)
	for rows.Next() {
		var it types.Itinerary
		var hotspotID string
		if err := rows.Scan(&it.ID, &it.UserID, &it.CreatedAt, &hotspotID); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		i, seen := index[it.ID]
		if !seen {
			itineraries = append(itineraries, it)
			i = len(itineraries) - 1
			index[it.ID] = i
		}
		itineraries[i].HotspotIDs = append(itineraries[i].HotspotIDs, hotspotID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating itineraries: %w", err)
	}
	return itineraries, nil
}
