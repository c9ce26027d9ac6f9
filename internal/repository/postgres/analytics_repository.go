package postgres

import (
	"context"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsRepository struct {
	db *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) GetByShortID(ctx context.Context, shortID string) (*domain.URLRecord, error) {
	query := `
		SELECT id, short_id, original_url, total_clicks, unique_clicks, visitor_details, created_at, updated_at
		FROM urls
		WHERE short_id = $1
		LIMIT 1
	`

	return scanRecord(r.db.QueryRow(ctx, query, shortID))
}

// UpdateAnalytics writes counters, history and updated_at in one statement.
// It does not compare against the values that were read, so two concurrent
// read-modify-write cycles on the same row can lose an increment.
func (r *AnalyticsRepository) UpdateAnalytics(ctx context.Context, rec *domain.URLRecord) error {
	history, err := domain.EncodeHistory(rec.VisitorDetails)
	if err != nil {
		return err
	}

	query := `
		UPDATE urls
		SET total_clicks = $1, unique_clicks = $2, visitor_details = $3, updated_at = $4
		WHERE short_id = $5
	`

	tag, err := r.db.Exec(ctx, query,
		rec.TotalClicks,
		rec.UniqueClicks,
		history,
		rec.UpdatedAt,
		rec.ShortID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}
