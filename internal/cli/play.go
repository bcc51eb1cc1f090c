package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// Player plays the recording at index.
type Player interface {
	Play(ctx context.Context, index int) error
}

// ErrPlaybackInterrupted is returned when a stop signal ends playback early.
var ErrPlaybackInterrupted = errors.New("playback interrupted")

// Play starts playback of index and blocks until finished is closed or a
// stop signal arrives.
func Play(ctx context.Context, p Player, index int, finished <-chan struct{}, stdin io.Reader) error {
	if err := p.Play(ctx, index); err != nil {
		return err
	}

	stopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	select {
	case <-finished:
		slog.Info("playback finished")
		return nil
	case <-CatchStopSignals(stopCtx, stdin):
		return ErrPlaybackInterrupted
	}
}
