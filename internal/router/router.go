package router

import (
	"github.com/gamassss/utm-tracker/internal/handler"
	"github.com/gamassss/utm-tracker/internal/middleware"
	"github.com/gamassss/utm-tracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Shortener *handler.ShortenerHandler
	Tracking  *handler.TrackingHandler
	Analytics *handler.AnalyticsHandler
	Health    *handler.HealthHandler
}

type Options struct {
	CORS middleware.CORSConfig
	// RateLimiter guards the write endpoints. Nil disables limiting.
	RateLimiter *middleware.RateLimiter
}

func New(h Handlers, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(opts.CORS))

	router.GET("/health", h.Health.Health)
	router.GET("/readyz", h.Health.Readyz)

	router.GET("/urls", h.Shortener.ListURLs)
	router.GET("/analytics/:shortId", h.Analytics.GetAnalytics)

	writes := router.Group("/")
	if opts.RateLimiter != nil {
		writes.Use(opts.RateLimiter.Limit())
	}
	{
		writes.POST("/shorten", h.Shortener.ShortenURL)
		writes.POST("/track", h.Tracking.Track)
		writes.POST("/track-batch", h.Tracking.TrackBatch)
	}

	router.GET("/:shortId", h.Shortener.Redirect)

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Not found")
	})

	return router
}
