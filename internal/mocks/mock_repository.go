package mocks

import (
	"context"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockURLRepository struct {
	mock.Mock
}

func (m *MockURLRepository) Create(ctx context.Context, url *domain.URLRecord) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockURLRepository) GetByShortID(ctx context.Context, shortID string) (*domain.URLRecord, error) {
	args := m.Called(ctx, shortID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

func (m *MockURLRepository) GetDestination(ctx context.Context, shortID string) (string, error) {
	args := m.Called(ctx, shortID)
	return args.String(0), args.Error(1)
}

func (m *MockURLRepository) List(ctx context.Context, limit, offset int) ([]domain.URLRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.URLRecord), args.Error(1)
}

func (m *MockURLRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) GetByShortID(ctx context.Context, shortID string) (*domain.URLRecord, error) {
	args := m.Called(ctx, shortID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLRecord), args.Error(1)
}

func (m *MockAnalyticsRepository) UpdateAnalytics(ctx context.Context, rec *domain.URLRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
