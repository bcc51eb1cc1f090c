package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alkime/voicememo/internal/audio"
	"github.com/alkime/voicememo/internal/config"
	"github.com/alkime/voicememo/internal/logger"
	"github.com/alkime/voicememo/internal/memo"
	"github.com/alkime/voicememo/internal/server"
	"github.com/alkime/voicememo/internal/workdir"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logger := logger.SetupLogger(cfg)

	dir, err := workdir.Recordings(cfg.RecordingsDir)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	if err := workdir.Prep(dir); err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	logger.Info("Starting voicememo server",
		"env", cfg.Env,
		"port", cfg.Port,
		"recordings", dir,
	)

	backend, err := audio.NewBackend(audio.BackendConfig{Dir: dir, SampleRate: cfg.SampleRate})
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	appConf, err := cfg.App()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// the API only reports the latest notice
	notices := &memo.LastNotice{}
	app := memo.NewApp(backend, notices, appConf)

	files, err := audio.ListRecordings(dir)
	if err != nil {
		logger.Warn("Failed to list existing recordings", "error", err)
	}

	for _, f := range files {
		app.Restore(memo.SavedRecording{URI: f.URI, DurationSeconds: int(f.Duration.Seconds())})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger, app, notices, dir)

	err = server.Run(ctx, srv)
	app.Close(context.Background())

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to start server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}
