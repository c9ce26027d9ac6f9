package mocks

import (
	"context"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockDestinationCache struct {
	mock.Mock
}

func (m *MockDestinationCache) GetDestination(ctx context.Context, shortID string) (string, bool, error) {
	args := m.Called(ctx, shortID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockDestinationCache) SetDestination(ctx context.Context, shortID, destination string) error {
	args := m.Called(ctx, shortID, destination)
	return args.Error(0)
}

type MockListCache struct {
	mock.Mock
}

func (m *MockListCache) Get(page, limit int) (*domain.URLList, bool) {
	args := m.Called(page, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.URLList), args.Bool(1)
}

func (m *MockListCache) Set(page, limit int, list *domain.URLList) {
	m.Called(page, limit, list)
}
