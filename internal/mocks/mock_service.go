package mocks

import (
	"context"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShortenerService struct {
	mock.Mock
}

func (m *MockShortenerService) ShortenURL(ctx context.Context, req *domain.ShortenRequest) (*domain.URLRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

func (m *MockShortenerService) ResolveRedirect(ctx context.Context, shortID string) (string, error) {
	args := m.Called(ctx, shortID)
	return args.String(0), args.Error(1)
}

func (m *MockShortenerService) ListURLs(ctx context.Context, page, limit int) (*domain.URLList, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLList), args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetAnalytics(ctx context.Context, shortID string) (*domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, shortID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalyticsSnapshot), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, visit domain.Visit) bool {
	args := m.Called(ctx, visit)
	return args.Bool(0)
}
