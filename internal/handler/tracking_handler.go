package handler

import (
	"context"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/pkg/detector"
	"github.com/gamassss/utm-tracker/pkg/response"
	"github.com/gamassss/utm-tracker/pkg/validator"
	"github.com/gin-gonic/gin"
)

const (
	msgTrackRequired  = "shortId and visitorId required"
	msgEventsRequired = "events array required"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, visit domain.Visit) bool
}

type TrackingHandler struct {
	dispatcher Dispatcher
	batchLimit int
}

func NewTrackingHandler(dispatcher Dispatcher, batchLimit int) *TrackingHandler {
	if batchLimit <= 0 {
		batchLimit = 10
	}
	return &TrackingHandler{dispatcher: dispatcher, batchLimit: batchLimit}
}

// Track accepts one visit from the landing page. The analytics update runs
// after the response is sent.
func (h *TrackingHandler) Track(c *gin.Context) {
	var req domain.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgTrackRequired)
		return
	}
	if err := validator.Validate(&req); err != nil {
		response.BadRequest(c, msgTrackRequired)
		return
	}

	h.dispatcher.Dispatch(c.Request.Context(), h.visit(c, req))

	response.OK(c, response.SuccessResponse{Success: true})
}

// TrackBatch accepts up to batchLimit events; the rest are ignored and
// invalid events are skipped.
func (h *TrackingHandler) TrackBatch(c *gin.Context) {
	var req domain.TrackBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Events) == 0 {
		response.BadRequest(c, msgEventsRequired)
		return
	}

	events := req.Events
	if len(events) > h.batchLimit {
		events = events[:h.batchLimit]
	}

	processed := 0
	for _, ev := range events {
		if err := validator.Validate(&ev); err != nil {
			continue
		}
		if h.dispatcher.Dispatch(c.Request.Context(), h.visit(c, ev)) {
			processed++
		}
	}

	response.OK(c, domain.TrackBatchResponse{Success: true, Processed: processed})
}

func (h *TrackingHandler) visit(c *gin.Context, req domain.TrackRequest) domain.Visit {
	loc := detector.DetectLocation(c.Request.Header, req.City)

	return domain.Visit{
		ShortID:   req.ShortID,
		VisitorID: req.VisitorID,
		City:      loc.City,
		Country:   loc.Country,
		UserAgent: c.Request.UserAgent(),
	}
}
