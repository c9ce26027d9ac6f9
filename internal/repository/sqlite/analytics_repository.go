package sqlite

import (
	"context"
	"database/sql"

	"github.com/gamassss/utm-tracker/internal/domain"
)

type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) GetByShortID(ctx context.Context, shortID string) (*domain.URLRecord, error) {
	return getByShortID(ctx, r.db, shortID)
}

func (r *AnalyticsRepository) UpdateAnalytics(ctx context.Context, rec *domain.URLRecord) error {
	history, err := domain.EncodeHistory(rec.VisitorDetails)
	if err != nil {
		return err
	}

	query := `
		UPDATE urls
		SET total_clicks = ?, unique_clicks = ?, visitor_details = ?, updated_at = ?
		WHERE short_id = ?
	`

	res, err := r.db.ExecContext(ctx, query,
		rec.TotalClicks,
		rec.UniqueClicks,
		string(history),
		formatTime(rec.UpdatedAt),
		rec.ShortID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	return nil
}
