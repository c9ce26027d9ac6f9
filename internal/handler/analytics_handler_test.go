package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetAnalytics_Success(t *testing.T) {
	mockService := new(mocks.MockAnalyticsService)
	handler := NewAnalyticsHandler(mockService)
	router := setupTestRouter()
	router.GET("/analytics/:shortId", handler.GetAnalytics)

	ts := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	mockService.On("GetAnalytics", mock.Anything, "abcd1234").Return(&domain.AnalyticsSnapshot{
		TotalClicks:  3,
		UniqueClicks: 2,
		CreatedAt:    ts,
		UpdatedAt:    ts,
		Visitors: []domain.VisitorDetail{
			{VisitorID: "fp-1", City: "Jakarta", Country: "ID", Timestamp: ts, UserAgent: "curl"},
		},
	}, nil).Once()

	req := httptest.NewRequest("GET", "/analytics/abcd1234", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"totalClicks": 3,
		"uniqueClicks": 2,
		"createdAt": "2025-02-01T09:00:00Z",
		"updatedAt": "2025-02-01T09:00:00Z",
		"visitors": [{"visitorId":"fp-1","city":"Jakarta","country":"ID","timestamp":"2025-02-01T09:00:00Z","userAgent":"curl"}]
	}`, w.Body.String())
}

func TestGetAnalytics_NotFound(t *testing.T) {
	mockService := new(mocks.MockAnalyticsService)
	handler := NewAnalyticsHandler(mockService)
	router := setupTestRouter()
	router.GET("/analytics/:shortId", handler.GetAnalytics)

	mockService.On("GetAnalytics", mock.Anything, "missing1").
		Return(nil, &domain.NotFoundError{Resource: "URL", Key: "missing1"}).Once()

	req := httptest.NewRequest("GET", "/analytics/missing1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "URL not found", decode(t, w)["error"])
}

func TestGetAnalytics_StorageError(t *testing.T) {
	mockService := new(mocks.MockAnalyticsService)
	handler := NewAnalyticsHandler(mockService)
	router := setupTestRouter()
	router.GET("/analytics/:shortId", handler.GetAnalytics)

	mockService.On("GetAnalytics", mock.Anything, "abcd1234").
		Return(nil, &domain.StorageError{Op: "failed to get analytics", Err: errors.New("timeout")}).Once()

	req := httptest.NewRequest("GET", "/analytics/abcd1234", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to get analytics", decode(t, w)["error"])
}

func TestHealth(t *testing.T) {
	handler := NewHealthHandler(nil, "test")
	router := setupTestRouter()
	router.GET("/health", handler.Health)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Server is running", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestReadyz(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	tests := []struct {
		name   string
		checks map[string]CheckFunc
		code   int
		status string
	}{
		{"all up", map[string]CheckFunc{"database": up, "redis": up}, http.StatusOK, "up"},
		{"one down", map[string]CheckFunc{"database": up, "redis": down}, http.StatusServiceUnavailable, "down"},
		{"no checks", map[string]CheckFunc{}, http.StatusOK, "up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.checks, "test")
			router := setupTestRouter()
			router.GET("/readyz", handler.Readyz)

			req := httptest.NewRequest("GET", "/readyz", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.status, body["status"])
			assert.Len(t, body["checks"], len(tt.checks))
		})
	}
}
