package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alkime/voicememo/internal/audio"
	"github.com/alkime/voicememo/internal/config"
	"github.com/alkime/voicememo/internal/memo"
	"github.com/alkime/voicememo/internal/workdir"
)

// env is what every command needs: config, recordings dir and backend.
type env struct {
	cfg     *config.Config
	dir     string
	backend *audio.Backend
}

func newEnv(g *Globals) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	override := cfg.RecordingsDir
	if g.RecordingsDir != "" {
		override = g.RecordingsDir
	}

	dir, err := workdir.Recordings(override)
	if err != nil {
		return nil, fmt.Errorf("failed to determine recordings directory: %w", err)
	}

	if err := workdir.Prep(dir); err != nil {
		return nil, err
	}

	backend, err := audio.NewBackend(audio.BackendConfig{
		Dir:        dir,
		SampleRate: cfg.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio backend: %w", err)
	}

	return &env{cfg: cfg, dir: dir, backend: backend}, nil
}

func (e *env) newApp(notifier memo.Notifier, onFinished func(memo.SavedRecording)) (*memo.App, error) {
	conf, err := e.cfg.App()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	conf.OnPlaybackFinished = onFinished

	return memo.NewApp(e.backend, notifier, conf), nil
}

// restore loads recordings from earlier runs into app.
func (e *env) restore(app *memo.App) error {
	files, err := audio.ListRecordings(e.dir)
	if err != nil {
		return err
	}

	for _, f := range files {
		app.Restore(memo.SavedRecording{URI: f.URI, DurationSeconds: int(f.Duration.Seconds())})
	}

	slog.Debug("restored recordings", "count", len(files), "dir", e.dir)

	return nil
}

// printNotices writes notices to stdout for headless commands.
func printNotices() memo.Notifier {
	return memo.NotifierFunc(func(n memo.Notice) {
		fmt.Printf("%s: %s\n", n.Title, n.Message) //nolint:forbidigo // CLI output
	})
}

func closeApp(app *memo.App) {
	app.Close(context.Background())
}
