package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DispatcherLocal = "local"
	DispatcherNATS  = "nats"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Tracking  TrackingConfig
	RateLimit RateLimitConfig
	NATS      NATSConfig
}

type ServerConfig struct {
	Port            string
	BaseURL         string
	LandingPageURL  string
	AllowedOrigin   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	MaxConnIdleTime time.Duration
	Migrate         bool
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	Addr         string
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	TTL          time.Duration
}

type CacheConfig struct {
	ListTTL     time.Duration
	MaxCost     int64
	NumCounters int64
}

type TrackingConfig struct {
	Dispatcher      string
	Workers         int
	QueueSize       int
	JobTimeout      time.Duration
	BatchLimit      int
	HistoryLimit    int
	SerializePerKey bool
	TrackOnRedirect bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

type NATSConfig struct {
	URL     string
	Subject string
	Queue   string
}

// Load reads .env (when present) and the environment into a Config value.
// A private viper instance keeps the result independent of global state.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: %s not loaded (%v), using environment and defaults", path, err)
	}

	dbConfig := DatabaseConfig{
		Driver:          v.GetString("DB_DRIVER"),
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetString("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		URL:             v.GetString("DB_URL"),
		MaxConns:        v.GetInt("DB_MAX_CONNS"),
		MinConns:        v.GetInt("DB_MIN_CONNS"),
		ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		MaxConnIdleTime: v.GetDuration("DB_MAX_CONN_IDLE_TIME"),
		Migrate:         v.GetBool("DB_MIGRATE"),
	}

	if dbConfig.URL == "" {
		switch dbConfig.Driver {
		case DriverSQLite:
			dbConfig.URL = "file:utm-tracker.db"
		default:
			dbConfig.URL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				dbConfig.User,
				dbConfig.Password,
				dbConfig.Host,
				dbConfig.Port,
				dbConfig.Name,
			)
		}
	}

	redisConfig := RedisConfig{
		Enabled:      v.GetBool("REDIS_ENABLED"),
		Host:         v.GetString("REDIS_HOST"),
		Port:         v.GetString("REDIS_PORT"),
		Password:     v.GetString("REDIS_PASSWORD"),
		DB:           v.GetInt("REDIS_DB"),
		PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
		MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
		MaxRetries:   v.GetInt("REDIS_MAX_RETRIES"),
		TTL:          v.GetDuration("REDIS_TTL"),
	}

	redisConfig.Addr = fmt.Sprintf("%s:%s", redisConfig.Host, redisConfig.Port)

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			BaseURL:         v.GetString("SERVER_BASE_URL"),
			LandingPageURL:  v.GetString("SERVER_LANDING_PAGE_URL"),
			AllowedOrigin:   v.GetString("SERVER_ALLOWED_ORIGIN"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			OutputPath: v.GetString("LOG_OUTPUT_PATH"),
			MaxSize:    v.GetInt("LOG_MAX_SIZE"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAge:     v.GetInt("LOG_MAX_AGE"),
			Compress:   v.GetBool("LOG_COMPRESS"),
		},
		Database: dbConfig,
		Redis:    redisConfig,
		Cache: CacheConfig{
			ListTTL:     v.GetDuration("CACHE_LIST_TTL"),
			MaxCost:     v.GetInt64("CACHE_MAX_COST"),
			NumCounters: v.GetInt64("CACHE_NUM_COUNTERS"),
		},
		Tracking: TrackingConfig{
			Dispatcher:      v.GetString("TRACKING_DISPATCHER"),
			Workers:         v.GetInt("TRACKING_WORKERS"),
			QueueSize:       v.GetInt("TRACKING_QUEUE_SIZE"),
			JobTimeout:      v.GetDuration("TRACKING_JOB_TIMEOUT"),
			BatchLimit:      v.GetInt("TRACKING_BATCH_LIMIT"),
			HistoryLimit:    v.GetInt("TRACKING_HISTORY_LIMIT"),
			SerializePerKey: v.GetBool("TRACKING_SERIALIZE_PER_KEY"),
			TrackOnRedirect: v.GetBool("TRACKING_TRACK_ON_REDIRECT"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		NATS: NATSConfig{
			URL:     v.GetString("NATS_URL"),
			Subject: v.GetString("NATS_SUBJECT"),
			Queue:   v.GetString("NATS_QUEUE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_BASE_URL", "")
	v.SetDefault("SERVER_LANDING_PAGE_URL", "https://utmtrackingpage.vercel.app/")
	v.SetDefault("SERVER_ALLOWED_ORIGIN", "*")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_PATH", "")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE", 28)
	v.SetDefault("LOG_COMPRESS", true)

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "root")
	v.SetDefault("DB_NAME", "utmtracker")
	v.SetDefault("DB_URL", "")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_MAX_CONN_IDLE_TIME", "30m")
	v.SetDefault("DB_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_TTL", "24h")

	v.SetDefault("CACHE_LIST_TTL", "1m")
	v.SetDefault("CACHE_MAX_COST", 1000)
	v.SetDefault("CACHE_NUM_COUNTERS", 10000)

	v.SetDefault("TRACKING_DISPATCHER", DispatcherLocal)
	v.SetDefault("TRACKING_WORKERS", 4)
	v.SetDefault("TRACKING_QUEUE_SIZE", 1024)
	v.SetDefault("TRACKING_JOB_TIMEOUT", "5s")
	v.SetDefault("TRACKING_BATCH_LIMIT", 10)
	v.SetDefault("TRACKING_HISTORY_LIMIT", 1000)
	v.SetDefault("TRACKING_SERIALIZE_PER_KEY", false)
	v.SetDefault("TRACKING_TRACK_ON_REDIRECT", false)

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_SUBJECT", "utm.track")
	v.SetDefault("NATS_QUEUE", "analytics")
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	switch c.Tracking.Dispatcher {
	case DispatcherLocal, DispatcherNATS:
	default:
		errs = append(errs, fmt.Errorf("unsupported TRACKING_DISPATCHER %q", c.Tracking.Dispatcher))
	}

	if c.Server.LandingPageURL == "" {
		errs = append(errs, errors.New("SERVER_LANDING_PAGE_URL is required"))
	}
	if c.Tracking.Workers <= 0 {
		errs = append(errs, errors.New("TRACKING_WORKERS must be positive"))
	}
	if c.Tracking.QueueSize <= 0 {
		errs = append(errs, errors.New("TRACKING_QUEUE_SIZE must be positive"))
	}
	if c.Tracking.BatchLimit <= 0 {
		errs = append(errs, errors.New("TRACKING_BATCH_LIMIT must be positive"))
	}
	if c.Tracking.HistoryLimit <= 0 {
		errs = append(errs, errors.New("TRACKING_HISTORY_LIMIT must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	return errors.Join(errs...)
}
