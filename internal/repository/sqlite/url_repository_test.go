package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func newRecord(shortID string, createdAt time.Time) *domain.URLRecord {
	return &domain.URLRecord{
		ShortID:        shortID,
		OriginalURL:    "https://example.com/" + shortID,
		VisitorDetails: []domain.VisitorDetail{},
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func TestURLRepository_CreateAndGet(t *testing.T) {
	repo := NewURLRepository(setupTestDatabase(t))
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 10, 30, 0, 123456789, time.UTC)

	rec := newRecord("abcd1234", now)
	require.NoError(t, repo.Create(ctx, rec))
	assert.NotZero(t, rec.ID)

	got, err := repo.GetByShortID(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, rec.OriginalURL, got.OriginalURL)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.NotNil(t, got.VisitorDetails)
	assert.Empty(t, got.VisitorDetails)

	dest, err := repo.GetDestination(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/abcd1234", dest)
}

func TestURLRepository_NotFound(t *testing.T) {
	repo := NewURLRepository(setupTestDatabase(t))
	ctx := context.Background()

	_, err := repo.GetByShortID(ctx, "missing1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetDestination(ctx, "missing1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestURLRepository_DuplicateShortID(t *testing.T) {
	repo := NewURLRepository(setupTestDatabase(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRecord("dup12345", time.Now())))
	err := repo.Create(ctx, newRecord("dup12345", time.Now()))

	assert.ErrorIs(t, err, domain.ErrDuplicateShortID)
}

func TestURLRepository_ListNewestFirst(t *testing.T) {
	repo := NewURLRepository(setupTestDatabase(t))
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Create(ctx, newRecord(fmt.Sprintf("list%04d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	first, err := repo.List(ctx, 5, 0)
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.Equal(t, "list0011", first[0].ShortID)

	second, err := repo.List(ctx, 5, 5)
	require.NoError(t, err)
	require.Len(t, second, 5)
	assert.Equal(t, "list0006", second[0].ShortID)
	assert.Equal(t, "list0002", second[4].ShortID)

	last, err := repo.List(ctx, 5, 10)
	require.NoError(t, err)
	assert.Len(t, last, 2)

	beyond, err := repo.List(ctx, 5, 50)
	require.NoError(t, err)
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}

func TestURLRepository_ListTieBreaksOnID(t *testing.T) {
	repo := NewURLRepository(setupTestDatabase(t))
	ctx := context.Background()
	same := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newRecord("tie00001", same)))
	require.NoError(t, repo.Create(ctx, newRecord("tie00002", same)))

	got, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "tie00002", got[0].ShortID)
}

func TestAnalyticsRepository_UpdateAnalytics(t *testing.T) {
	db := setupTestDatabase(t)
	urls := NewURLRepository(db)
	analytics := NewAnalyticsRepository(db)
	ctx := context.Background()

	rec := newRecord("stat1234", time.Now())
	require.NoError(t, urls.Create(ctx, rec))

	now := time.Now().UTC()
	domain.ApplyVisit(rec, domain.Visit{VisitorID: "fp-1", City: "Jakarta", Country: "ID", UserAgent: "curl"}, now, domain.HistoryLimit)
	domain.ApplyVisit(rec, domain.Visit{VisitorID: "fp-1"}, now, domain.HistoryLimit)
	require.NoError(t, analytics.UpdateAnalytics(ctx, rec))

	got, err := analytics.GetByShortID(ctx, "stat1234")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalClicks)
	assert.Equal(t, int64(1), got.UniqueClicks)
	require.Len(t, got.VisitorDetails, 1)
	assert.Equal(t, "Jakarta", got.VisitorDetails[0].City)
	assert.True(t, now.Equal(got.UpdatedAt))
}

func TestAnalyticsRepository_UpdateUnknown(t *testing.T) {
	analytics := NewAnalyticsRepository(setupTestDatabase(t))

	err := analytics.UpdateAnalytics(context.Background(), newRecord("nope0000", time.Now()))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyticsRepository_HistoryBound(t *testing.T) {
	db := setupTestDatabase(t)
	urls := NewURLRepository(db)
	analytics := NewAnalyticsRepository(db)
	ctx := context.Background()

	require.NoError(t, urls.Create(ctx, newRecord("bound123", time.Now())))

	for i := 0; i < 1001; i++ {
		rec, err := analytics.GetByShortID(ctx, "bound123")
		require.NoError(t, err)
		domain.ApplyVisit(rec, domain.Visit{VisitorID: fmt.Sprintf("fp-%d", i)}, time.Now(), domain.HistoryLimit)
		require.NoError(t, analytics.UpdateAnalytics(ctx, rec))
	}

	got, err := analytics.GetByShortID(ctx, "bound123")
	require.NoError(t, err)
	require.Len(t, got.VisitorDetails, domain.HistoryLimit)
	assert.Equal(t, int64(1001), got.UniqueClicks)
	assert.Equal(t, "fp-1", got.VisitorDetails[0].VisitorID)
	assert.Equal(t, "fp-1000", got.VisitorDetails[999].VisitorID)
}
