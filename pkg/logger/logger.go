package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/yanqian/adventure-ai/internal/infra/config"
)

// New constructs the JSON slog logger tagged with the service name and version.
func New(cfg *config.Config) *slog.Logger {
	return newWithWriter(os.Stdout, cfg)
}

func newWithWriter(w io.Writer, cfg *config.Config) *slog.Logger {
	level := cfg.App.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler).With("service", cfg.App.Name, "version", cfg.App.Version)
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
