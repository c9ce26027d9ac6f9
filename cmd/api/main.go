package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamassss/utm-tracker/internal/cache"
	"github.com/gamassss/utm-tracker/internal/config"
	"github.com/gamassss/utm-tracker/internal/handler"
	"github.com/gamassss/utm-tracker/internal/logger"
	"github.com/gamassss/utm-tracker/internal/middleware"
	"github.com/gamassss/utm-tracker/internal/repository/postgres"
	redisRepo "github.com/gamassss/utm-tracker/internal/repository/redis"
	"github.com/gamassss/utm-tracker/internal/repository/sqlite"
	"github.com/gamassss/utm-tracker/internal/router"
	"github.com/gamassss/utm-tracker/internal/service"
	"github.com/gamassss/utm-tracker/internal/tracker"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

// store bundles whichever backend DB_DRIVER selected.
type store struct {
	urls      service.URLRepository
	analytics service.AnalyticsRepository
	ping      handler.CheckFunc
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Initialize(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.Get()
	log.Info("Starting UTM tracker service",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
		"db_driver", cfg.Database.Driver,
		"dispatcher", cfg.Tracking.Dispatcher,
	)

	ctx := context.Background()

	st, err := setupStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to setup database", "error", err)
		os.Exit(1)
	}
	defer st.close()

	checks := map[string]handler.CheckFunc{"database": st.ping}

	var destCache service.DestinationCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = setupRedis(ctx, cfg)
		if err != nil {
			log.Error("Failed to setup redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		destCache = redisRepo.NewDestinationCache(redisClient, cfg.Redis.TTL)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	listCache, err := cache.NewListCache(cfg.Cache)
	if err != nil {
		log.Error("Failed to setup list cache", "error", err)
		os.Exit(1)
	}
	defer listCache.Close()

	shortenerService := service.NewShortenerService(st.urls, destCache, listCache, cfg.Server.LandingPageURL)
	analyticsService := service.NewAnalyticsService(st.analytics, cfg.Tracking)

	dispatcher, natsConn, err := setupDispatcher(cfg, analyticsService.RecordVisit)
	if err != nil {
		log.Error("Failed to setup tracking dispatcher", "error", err)
		os.Exit(1)
	}
	if natsConn != nil {
		checks["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return fmt.Errorf("nats status %s", natsConn.Status())
			}
			return nil
		}
	}

	shortenerHandler := handler.NewShortenerHandler(shortenerService, cfg.Server.BaseURL, listCache.TTL())
	if cfg.Tracking.TrackOnRedirect {
		shortenerHandler.WithRedirectTracking(dispatcher)
	}

	opts := router.Options{CORS: middleware.DefaultCORSConfig(cfg.Server.AllowedOrigin)}
	if cfg.RateLimit.Enabled {
		opts.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	gin.SetMode(gin.ReleaseMode)
	r := router.New(router.Handlers{
		Shortener: shortenerHandler,
		Tracking:  handler.NewTrackingHandler(dispatcher, cfg.Tracking.BatchLimit),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Health:    handler.NewHealthHandler(checks, version),
	}, opts)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg.Server.ShutdownTimeout, dispatcher, natsConn, log)
}

func setupStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store, error) {
	dbConfig := cfg.Database

	if dbConfig.Driver == config.DriverSQLite {
		db, err := sqlite.Open(ctx, dbConfig.URL)
		if err != nil {
			return nil, err
		}

		return &store{
			urls:      sqlite.NewURLRepository(db),
			analytics: sqlite.NewAnalyticsRepository(db),
			ping:      db.PingContext,
			close:     func() { db.Close() },
		}, nil
	}

	if dbConfig.Migrate {
		if err := postgres.Migrate(dbConfig.URL, log); err != nil {
			return nil, err
		}
	}

	poolConfig, err := pgxpool.ParseConfig(dbConfig.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(dbConfig.MaxConns)
	poolConfig.MinConns = int32(dbConfig.MinConns)
	poolConfig.MaxConnLifetime = dbConfig.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = dbConfig.MaxConnIdleTime

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &store{
		urls:      postgres.NewURLRepository(dbPool),
		analytics: postgres.NewAnalyticsRepository(dbPool),
		ping:      dbPool.Ping,
		close:     dbPool.Close,
	}, nil
}

func setupRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return redisClient, nil
}

// setupDispatcher returns the tracking dispatcher. With the nats dispatcher
// this process also joins the consumer queue group.
func setupDispatcher(cfg *config.Config, handle tracker.HandlerFunc) (tracker.Dispatcher, *nats.Conn, error) {
	if cfg.Tracking.Dispatcher != config.DispatcherNATS {
		return tracker.NewPool(handle, cfg.Tracking), nil, nil
	}

	conn, err := nats.Connect(
		cfg.NATS.URL,
		nats.Name("utm-tracker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	if _, err := tracker.Subscribe(conn, cfg.NATS.Subject, cfg.NATS.Queue, handle, cfg.Tracking.JobTimeout); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", cfg.NATS.Subject, err)
	}

	return tracker.NewNATSDispatcher(conn, cfg.NATS.Subject), conn, nil
}

func gracefulShutdown(srv *http.Server, timeout time.Duration, dispatcher tracker.Dispatcher, natsConn *nats.Conn, log *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	if err := dispatcher.Close(ctx); err != nil {
		log.Error("Tracking queue not fully drained", "error", err)
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.Error("Error draining NATS", "error", err)
		}
	}

	log.Info("Graceful shutdown completed")
}
