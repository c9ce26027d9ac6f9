package postgres

import (
	"context"
	"errors"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type URLRepository struct {
	db *pgxpool.Pool
}

func NewURLRepository(db *pgxpool.Pool) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) Create(ctx context.Context, url *domain.URLRecord) error {
	history, err := domain.EncodeHistory(url.VisitorDetails)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO urls (short_id, original_url, total_clicks, unique_clicks, visitor_details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err = r.db.QueryRow(ctx, query,
		url.ShortID,
		url.OriginalURL,
		url.TotalClicks,
		url.UniqueClicks,
		history,
		url.CreatedAt,
		url.UpdatedAt,
	).Scan(&url.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateShortID
	}

	return err
}

func (r *URLRepository) GetByShortID(ctx context.Context, shortID string) (*domain.URLRecord, error) {
	query := `
		SELECT id, short_id, original_url, total_clicks, unique_clicks, visitor_details, created_at, updated_at
		FROM urls
		WHERE short_id = $1
		LIMIT 1
	`

	return scanRecord(r.db.QueryRow(ctx, query, shortID))
}

// GetDestination reads only the destination column, which is all the
// redirect path needs.
func (r *URLRepository) GetDestination(ctx context.Context, shortID string) (string, error) {
	var originalURL string

	err := r.db.QueryRow(ctx, `SELECT original_url FROM urls WHERE short_id = $1 LIMIT 1`, shortID).Scan(&originalURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}

	return originalURL, err
}

func (r *URLRepository) List(ctx context.Context, limit, offset int) ([]domain.URLRecord, error) {
	query := `
		SELECT id, short_id, original_url, total_clicks, unique_clicks, visitor_details, created_at, updated_at
		FROM urls
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.URLRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

func (r *URLRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM urls`).Scan(&total)
	return total, err
}

func scanRecord(row pgx.Row) (*domain.URLRecord, error) {
	var rec domain.URLRecord
	var history []byte

	err := row.Scan(
		&rec.ID,
		&rec.ShortID,
		&rec.OriginalURL,
		&rec.TotalClicks,
		&rec.UniqueClicks,
		&history,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.VisitorDetails, err = domain.DecodeHistory(history)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
