package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gamassss/utm-tracker/internal/domain"
)

type URLRepository struct {
	db *sql.DB
}

func NewURLRepository(db *sql.DB) *URLRepository {
	return &URLRepository{db: db}
}

func (r *URLRepository) Create(ctx context.Context, url *domain.URLRecord) error {
	history, err := domain.EncodeHistory(url.VisitorDetails)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO urls (short_id, original_url, total_clicks, unique_clicks, visitor_details, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		url.ShortID,
		url.OriginalURL,
		url.TotalClicks,
		url.UniqueClicks,
		string(history),
		formatTime(url.CreatedAt),
		formatTime(url.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrDuplicateShortID
		}
		return err
	}

	url.ID, err = res.LastInsertId()
	return err
}

func (r *URLRepository) GetByShortID(ctx context.Context, shortID string) (*domain.URLRecord, error) {
	return getByShortID(ctx, r.db, shortID)
}

func (r *URLRepository) GetDestination(ctx context.Context, shortID string) (string, error) {
	var originalURL string

	err := r.db.QueryRowContext(ctx, `SELECT original_url FROM urls WHERE short_id = ? LIMIT 1`, shortID).Scan(&originalURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}

	return originalURL, err
}

func (r *URLRepository) List(ctx context.Context, limit, offset int) ([]domain.URLRecord, error) {
	query := `
		SELECT id, short_id, original_url, total_clicks, unique_clicks, visitor_details, created_at, updated_at
		FROM urls
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
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
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM urls`).Scan(&total)
	return total, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getByShortID(ctx context.Context, db *sql.DB, shortID string) (*domain.URLRecord, error) {
	query := `
		SELECT id, short_id, original_url, total_clicks, unique_clicks, visitor_details, created_at, updated_at
		FROM urls
		WHERE short_id = ?
		LIMIT 1
	`

	return scanRecord(db.QueryRowContext(ctx, query, shortID))
}

func scanRecord(row rowScanner) (*domain.URLRecord, error) {
	var rec domain.URLRecord
	var history, createdAt, updatedAt string

	err := row.Scan(
		&rec.ID,
		&rec.ShortID,
		&rec.OriginalURL,
		&rec.TotalClicks,
		&rec.UniqueClicks,
		&history,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	rec.VisitorDetails, err = domain.DecodeHistory([]byte(history))
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
