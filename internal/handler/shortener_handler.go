package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/pkg/detector"
	"github.com/gamassss/utm-tracker/pkg/generator"
	"github.com/gamassss/utm-tracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type ShortenerService interface {
	ShortenURL(ctx context.Context, req *domain.ShortenRequest) (*domain.URLRecord, error)
	ResolveRedirect(ctx context.Context, shortID string) (string, error)
	ListURLs(ctx context.Context, page, limit int) (*domain.URLList, error)
}

type ShortenerHandler struct {
	service ShortenerService
	baseURL string
	listTTL time.Duration

	// redirectTracker, when set, records a visit for every redirect.
	redirectTracker Dispatcher
}

// NewShortenerHandler builds the handler. An empty baseURL makes short URLs
// relative to the origin of the request that created them.
func NewShortenerHandler(service ShortenerService, baseURL string, listTTL time.Duration) *ShortenerHandler {
	return &ShortenerHandler{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		listTTL: listTTL,
	}
}

// WithRedirectTracking makes Redirect dispatch a visit with a server-derived
// visitor id.
func (h *ShortenerHandler) WithRedirectTracking(d Dispatcher) *ShortenerHandler {
	h.redirectTracker = d
	return h
}

func (h *ShortenerHandler) ShortenURL(c *gin.Context) {
	var req domain.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	rec, err := h.service.ShortenURL(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "Failed to shorten URL")
		return
	}

	response.OK(c, domain.ShortenResponse{
		ShortURL: h.base(c) + "/" + rec.ShortID,
		ShortID:  rec.ShortID,
	})
}

func (h *ShortenerHandler) Redirect(c *gin.Context) {
	shortID := c.Param("shortId")

	target, err := h.service.ResolveRedirect(c.Request.Context(), shortID)
	if err != nil {
		response.FromError(c, err, "Failed to resolve URL")
		return
	}

	if h.redirectTracker != nil {
		h.trackRedirect(c, shortID)
	}

	c.Redirect(http.StatusFound, target)
}

func (h *ShortenerHandler) trackRedirect(c *gin.Context, shortID string) {
	r := c.Request
	ua := r.UserAgent()
	ip := detector.GetClientIP(r.RemoteAddr, r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP"))
	loc := detector.DetectLocation(r.Header, "")

	h.redirectTracker.Dispatch(r.Context(), domain.Visit{
		ShortID:   shortID,
		VisitorID: generator.VisitorID(ip, ua, time.Now()),
		City:      loc.City,
		Country:   loc.Country,
		UserAgent: ua,
	})
}

func (h *ShortenerHandler) ListURLs(c *gin.Context) {
	page, err := positiveQuery(c, "page", 1)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	limit, err := positiveQuery(c, "limit", 10)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, err := h.service.ListURLs(c.Request.Context(), page, limit)
	if err != nil {
		response.FromError(c, err, "Failed to list URLs")
		return
	}

	if h.listTTL > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.listTTL.Seconds())))
	}
	response.OK(c, list)
}

// positiveQuery parses an optional query parameter. Range checks beyond
// "is an integer" are left to the service.
func positiveQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func (h *ShortenerHandler) base(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	return requestOrigin(c.Request)
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return scheme + "://" + host
}
