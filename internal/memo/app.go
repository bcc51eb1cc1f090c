// Package memo is the voice memo core: permission gate, recording session,
// recording store and playback controller, wired together by App.
package memo

import (
	"context"
	"errors"
	"log/slog"
)

// Platform is everything App needs from the audio backend.
type Platform interface {
	PermissionRequester
	Recorder
	Player
}

// Config selects the behaviour of App. Zero values use the defaults.
type Config struct {
	StartPolicy   StartPolicy
	StoreMode     StoreMode
	PlaybackScope PlaybackScope
	NewTicker     TickerFunc

	// OnPlaybackFinished is called when a recording plays to the end.
	OnPlaybackFinished func(rec SavedRecording)
}

// Snapshot is what a screen needs to render.
type Snapshot struct {
	SessionSnapshot
	Recordings []SavedRecording
	Playing    *SavedRecording
	Scope      PlaybackScope
}

// IsPlaying reports whether the recording at i is playing.
func (s Snapshot) IsPlaying(i int) bool {
	return s.Playing != nil && i >= 0 && i < len(s.Recordings) && s.Recordings[i].URI == s.Playing.URI
}

// App is the single entry point for every presentation surface. Every
// failure is logged and raised as a notice where it happens.
type App struct {
	session  *RecordingSession
	store    *RecordingStore
	playback *PlaybackController
	notifier Notifier
}

func NewApp(platform Platform, notifier Notifier, conf Config) *App {
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}

	a := &App{
		store:    NewRecordingStore(conf.StoreMode),
		playback: NewPlaybackController(platform, conf.PlaybackScope),
		notifier: notifier,
	}

	a.playback.OnFinished = conf.OnPlaybackFinished

	a.session = NewRecordingSession(platform, NewPermissionGate(platform), SessionConfig{
		Policy:    conf.StartPolicy,
		NewTicker: conf.NewTicker,
		OnFailure: func(error) { a.notifier.Notify(noticeCaptureFailed) },
	})

	return a
}

// Restore adds recordings found on disk without raising notices.
func (a *App) Restore(recs ...SavedRecording) {
	for _, rec := range recs {
		a.store.Append(rec)
	}
}

func (a *App) StartRecording(ctx context.Context) error {
	prev, err := a.session.Start(ctx)
	if prev != nil {
		a.saved(*prev)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPermissionDenied):
		slog.Warn("recording not started", "error", err)
		a.notifier.Notify(noticePermission)
	default:
		slog.Error("failed to start recording", "error", err)
		a.notifier.Notify(noticeStartFailed)
	}

	return err
}

// StopRecording saves the live recording. Without one it returns
// ErrNotRecording and raises nothing.
func (a *App) StopRecording(ctx context.Context) (SavedRecording, error) {
	rec, err := a.session.Stop(ctx)
	if errors.Is(err, ErrNotRecording) {
		return SavedRecording{}, err
	}

	if err != nil {
		slog.Error("failed to stop recording", "error", err)
		a.notifier.Notify(noticeStopFailed)
		return SavedRecording{}, err
	}

	a.saved(rec)

	return rec, nil
}

func (a *App) saved(rec SavedRecording) {
	a.store.Append(rec)
	a.notifier.Notify(noticeSaved(rec.URI))
}

// Play plays the recording at index.
func (a *App) Play(ctx context.Context, index int) error {
	rec, ok := a.store.Get(index)
	if !ok {
		slog.Error("failed to play recording", "index", index, "error", ErrRecordingNotFound)
		a.notifier.Notify(noticePlayFailed)
		return wrap(PlaybackLoad, ErrRecordingNotFound)
	}

	_, err := a.playback.Play(ctx, rec)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyPlaying):
		slog.Warn("recording already playing", "uri", rec.URI)
		a.notifier.Notify(noticeAlreadyPlaying)
	default:
		slog.Error("failed to play recording", "uri", rec.URI, "error", err)
		a.notifier.Notify(noticePlayFailed)
	}

	return err
}

func (a *App) Recordings() []SavedRecording {
	return a.store.List()
}

func (a *App) Snapshot() Snapshot {
	s := Snapshot{
		SessionSnapshot: a.session.Snapshot(),
		Recordings:      a.store.List(),
		Scope:           a.playback.Scope(),
	}

	if rec, ok := a.playback.Playing(); ok {
		s.Playing = &rec
	}

	return s
}

// Levels returns up to n recent samples while recording.
func (a *App) Levels(n int) []int16 {
	return a.session.Levels(n)
}

// Close stops playback and discards any live recording.
func (a *App) Close(ctx context.Context) {
	a.playback.Close()
	a.session.Close(ctx)
}
