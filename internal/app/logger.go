package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger from LOG_FORMAT. "json" is the
// production format with source locations; "text" is logfmt-style; the
// default "pretty" is for local development and lowers the level to debug.
func NewLogger(cfg *Config) *slog.Logger {
	format := "pretty"
	if cfg != nil && cfg.LogFormat != "" {
		format = cfg.LogFormat
	}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelInfo,
		}))
	case "text":
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
}
