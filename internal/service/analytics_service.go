package service

import (
	"context"
	"errors"
	"time"

	"github.com/gamassss/utm-tracker/internal/config"
	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/internal/logger"
)

type AnalyticsRepository interface {
	GetByShortID(ctx context.Context, shortID string) (*domain.URLRecord, error)
	UpdateAnalytics(ctx context.Context, rec *domain.URLRecord) error
}

type AnalyticsService struct {
	repo         AnalyticsRepository
	historyLimit int
	locks        *keyedMutex
	now          func() time.Time
}

func NewAnalyticsService(repo AnalyticsRepository, cfg config.TrackingConfig) *AnalyticsService {
	s := &AnalyticsService{
		repo:         repo,
		historyLimit: cfg.HistoryLimit,
		now:          time.Now,
	}
	if s.historyLimit <= 0 {
		s.historyLimit = domain.HistoryLimit
	}
	if cfg.SerializePerKey {
		s.locks = newKeyedMutex()
	}
	return s
}

// RecordVisit applies one visit to its record. Failures are logged, never
// returned, so callers can fire and forget.
func (s *AnalyticsService) RecordVisit(ctx context.Context, visit domain.Visit) {
	if err := s.recordVisit(ctx, visit); err != nil {
		logger.FromContext(ctx).Error("failed to record visit",
			"short_id", visit.ShortID,
			"visitor_id", visit.VisitorID,
			"error", err,
		)
	}
}

func (s *AnalyticsService) recordVisit(ctx context.Context, visit domain.Visit) error {
	if s.locks != nil {
		unlock := s.locks.Lock(visit.ShortID)
		defer unlock()
	}

	log := logger.FromContext(ctx)

	rec, err := s.repo.GetByShortID(ctx, visit.ShortID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug("visit for unknown short id ignored", "short_id", visit.ShortID)
		return nil
	}
	if err != nil {
		return &domain.StorageError{Op: "failed to load url record", Err: err}
	}

	isNew := domain.ApplyVisit(rec, visit, s.now().UTC(), s.historyLimit)

	if err := s.repo.UpdateAnalytics(ctx, rec); err != nil {
		return &domain.StorageError{Op: "failed to update analytics", Err: err}
	}

	log.Info("analytics updated",
		"short_id", rec.ShortID,
		"total_clicks", rec.TotalClicks,
		"unique_clicks", rec.UniqueClicks,
		"new_visitor", isNew,
	)

	return nil
}

func (s *AnalyticsService) GetAnalytics(ctx context.Context, shortID string) (*domain.AnalyticsSnapshot, error) {
	rec, err := s.repo.GetByShortID(ctx, shortID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Resource: "URL", Key: shortID}
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "failed to get analytics", Err: err}
	}

	return domain.Snapshot(rec), nil
}
