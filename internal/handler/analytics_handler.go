package handler

import (
	"context"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type AnalyticsService interface {
	GetAnalytics(ctx context.Context, shortID string) (*domain.AnalyticsSnapshot, error)
}

type AnalyticsHandler struct {
	service AnalyticsService
}

func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	snap, err := h.service.GetAnalytics(c.Request.Context(), c.Param("shortId"))
	if err != nil {
		response.FromError(c, err, "Failed to get analytics")
		return
	}

	response.OK(c, snap)
}
