package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/internal/logger"
	"github.com/gamassss/utm-tracker/pkg/generator"
	"github.com/gamassss/utm-tracker/pkg/validator"
)

const (
	maxRetries = 3

	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	cacheWriteTimeout = 2 * time.Second
)

type URLRepository interface {
	Create(ctx context.Context, url *domain.URLRecord) error
	GetByShortID(ctx context.Context, shortID string) (*domain.URLRecord, error)
	GetDestination(ctx context.Context, shortID string) (string, error)
	List(ctx context.Context, limit, offset int) ([]domain.URLRecord, error)
	Count(ctx context.Context) (int64, error)
}

type DestinationCache interface {
	GetDestination(ctx context.Context, shortID string) (string, bool, error)
	SetDestination(ctx context.Context, shortID, destination string) error
}

type ListCache interface {
	Get(page, limit int) (*domain.URLList, bool)
	Set(page, limit int, list *domain.URLList)
}

type ShortenerService struct {
	urlRepo        URLRepository
	cache          DestinationCache
	listCache      ListCache
	landingPageURL string
	newID          func() (string, error)
}

// NewShortenerService wires the service. cache and listCache may be nil, in
// which case lookups always go to the store.
func NewShortenerService(urlRepo URLRepository, cache DestinationCache, listCache ListCache, landingPageURL string) *ShortenerService {
	if cache == nil {
		cache = nopDestinationCache{}
	}
	if listCache == nil {
		listCache = nopListCache{}
	}

	return &ShortenerService{
		urlRepo:        urlRepo,
		cache:          cache,
		listCache:      listCache,
		landingPageURL: landingPageURL,
		newID:          generator.GenerateShortID,
	}
}

func (s *ShortenerService) ShortenURL(ctx context.Context, req *domain.ShortenRequest) (*domain.URLRecord, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		var shortID string
		shortID, err = s.newID()
		if err != nil {
			return nil, &domain.StorageError{Op: "generate short id", Err: err}
		}

		now := time.Now().UTC()
		rec := &domain.URLRecord{
			ShortID:        shortID,
			OriginalURL:    req.OriginalURL,
			VisitorDetails: []domain.VisitorDetail{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err = s.urlRepo.Create(ctx, rec)
		if err == nil {
			logger.FromContext(ctx).Info("short url created", "short_id", shortID)
			return rec, nil
		}

		if errors.Is(err, domain.ErrDuplicateShortID) {
			logger.FromContext(ctx).Warn("short id collision, retrying", "short_id", shortID, "attempt", i+1)
			continue
		}

		return nil, &domain.StorageError{Op: "failed to create short url", Err: err}
	}

	return nil, &domain.StorageError{
		Op:  "failed to create short url",
		Err: fmt.Errorf("failed to generate short id after %d retries: %w", maxRetries, err),
	}
}

// ResolveRedirect returns the landing page URL carrying the short id and the
// encoded destination. It never writes to the URL record.
func (s *ShortenerService) ResolveRedirect(ctx context.Context, shortID string) (string, error) {
	log := logger.FromContext(ctx)

	dest, ok, err := s.cache.GetDestination(ctx, shortID)
	if err != nil {
		log.Warn("destination cache read failed", "short_id", shortID, "error", err)
	}
	if ok {
		return s.landingURL(shortID, dest), nil
	}

	dest, err = s.urlRepo.GetDestination(ctx, shortID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", &domain.NotFoundError{Resource: "URL", Key: shortID}
	}
	if err != nil {
		return "", &domain.StorageError{Op: "failed to get original url", Err: err}
	}

	go func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, cacheWriteTimeout)
		defer cancel()

		if err := s.cache.SetDestination(ctx, shortID, dest); err != nil {
			logger.FromContext(ctx).Warn("destination cache write failed", "short_id", shortID, "error", err)
		}
	}(logger.Detach(ctx))

	return s.landingURL(shortID, dest), nil
}

func (s *ShortenerService) landingURL(shortID, destination string) string {
	return s.landingPageURL + "?s=" + url.QueryEscape(shortID) + "&u=" + url.QueryEscape(destination)
}

// ListURLs returns one page of records, newest first.
func (s *ShortenerService) ListURLs(ctx context.Context, page, limit int) (*domain.URLList, error) {
	if page < 1 {
		return nil, domain.NewValidationError("page", "page must be a positive integer")
	}
	if limit < 1 {
		return nil, domain.NewValidationError("limit", "limit must be a positive integer")
	}
	if limit > MaxLimit {
		return nil, domain.NewValidationError("limit", fmt.Sprintf("limit must not exceed %d", MaxLimit))
	}

	if list, ok := s.listCache.Get(page, limit); ok {
		return list, nil
	}

	records, err := s.urlRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "failed to list urls", Err: err}
	}

	total, err := s.urlRepo.Count(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "failed to count urls", Err: err}
	}

	list := &domain.URLList{
		Data: records,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}
	s.listCache.Set(page, limit, list)

	return list, nil
}

type nopDestinationCache struct{}

func (nopDestinationCache) GetDestination(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (nopDestinationCache) SetDestination(context.Context, string, string) error {
	return nil
}

type nopListCache struct{}

func (nopListCache) Get(int, int) (*domain.URLList, bool) { return nil, false }

func (nopListCache) Set(int, int, *domain.URLList) {}
