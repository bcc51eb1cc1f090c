// Package logger sets up slog for each way the recorder runs.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alkime/voicememo/internal/config"
)

// SetupLogger configures structured JSON logging based on environment.
func SetupLogger(cfg *config.Config) *slog.Logger {
	return setDefault(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: Level(cfg),
	}))
}

// SetupCLI logs text to w at info level, or debug when verbose.
func SetupCLI(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	return setDefault(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetupFile logs text to path, for when the terminal belongs to the TUI.
// The returned func closes the file.
func SetupFile(path string, level slog.Level) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	logger := setDefault(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))

	return logger, f.Close, nil
}

// Level picks the log level: debug in development or when asked for.
func Level(cfg *config.Config) slog.Level {
	switch {
	case cfg.LogLevel == "debug", cfg.Env == "development":
		return slog.LevelDebug
	case cfg.LogLevel == "warn":
		return slog.LevelWarn
	case cfg.LogLevel == "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setDefault(handler slog.Handler) *slog.Logger {
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
