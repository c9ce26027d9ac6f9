package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gamassss/utm-tracker/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "utm-tracker"

var defaultLogger *slog.Logger

func Initialize(cfg config.LogConfig) error {
	writer, err := buildWriter(cfg)
	if err != nil {
		return err
	}

	defaultLogger = New(cfg, writer)
	slog.SetDefault(defaultLogger)

	return nil
}

// New builds a logger writing to w with the level and format from cfg.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", serviceName))
}

func Get() *slog.Logger {
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

func buildWriter(cfg config.LogConfig) (io.Writer, error) {
	if cfg.OutputPath == "" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
		return nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.OutputPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	return io.MultiWriter(os.Stdout, fileWriter), nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
