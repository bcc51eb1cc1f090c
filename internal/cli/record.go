// Package cli holds the headless flows behind the memo commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alkime/voicememo/internal/memo"
)

// ErrStoppedUnexpectedly is returned when the recording ends on its own.
var ErrStoppedUnexpectedly = errors.New("recording stopped unexpectedly")

// Recorder is the part of the recorder core a headless recording needs.
type Recorder interface {
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) (memo.SavedRecording, error)
	Snapshot() memo.Snapshot
}

type RecordOptions struct {
	// MaxDuration stops the recording automatically. Zero means no limit.
	MaxDuration time.Duration
	// Stdin is watched for Enter or Space.
	Stdin io.Reader
	// Progress, when set, receives a progress line every ProgressEvery.
	Progress      io.Writer
	ProgressEvery time.Duration
}

// Record starts a recording and stops it on a stop signal, on ctx being
// done or at MaxDuration.
func Record(ctx context.Context, rec Recorder, opts RecordOptions) (memo.SavedRecording, error) {
	if opts.MaxDuration < 0 {
		return memo.SavedRecording{}, errors.New("max duration must not be negative")
	}

	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 3 * time.Second
	}

	if err := rec.StartRecording(ctx); err != nil {
		return memo.SavedRecording{}, err
	}

	stopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var limitC <-chan time.Time
	if opts.MaxDuration > 0 {
		timer := time.NewTimer(opts.MaxDuration)
		defer timer.Stop()
		limitC = timer.C
	}

	stopC := CatchStopSignals(stopCtx, opts.Stdin)

	poll := time.NewTicker(opts.ProgressEvery)
	defer poll.Stop()

	slog.Info("recording... press Enter or Space to stop")

	for {
		select {
		case <-stopC:
			slog.Info("received stop signal")
			return stop(context.WithoutCancel(ctx), rec)

		case <-limitC:
			slog.Info("recording stopped", "reason", "max_duration_reached", "duration", opts.MaxDuration)
			return stop(ctx, rec)

		case <-poll.C:
			snap := rec.Snapshot()
			if snap.State == memo.Idle {
				return memo.SavedRecording{}, ErrStoppedUnexpectedly
			}

			if opts.Progress != nil {
				fmt.Fprintf(opts.Progress, "\rRecording: %s\n", //nolint:forbidigo // CLI progress
					formatDuration(time.Duration(snap.ElapsedSeconds)*time.Second, opts.MaxDuration))
			}
		}
	}
}

func stop(ctx context.Context, rec Recorder) (memo.SavedRecording, error) {
	saved, err := rec.StopRecording(ctx)
	if errors.Is(err, memo.ErrNotRecording) {
		return memo.SavedRecording{}, ErrStoppedUnexpectedly
	}

	return saved, err
}

// formatDuration formats elapsed, and the limit when there is one.
func formatDuration(elapsed, limit time.Duration) string {
	// Format as HH:MM:SS
	formatTime := func(d time.Duration) string {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}

	if limit <= 0 {
		return formatTime(elapsed)
	}

	percent := int(float64(elapsed) / float64(limit) * 100)

	return fmt.Sprintf("%s / %s (%d%%)", formatTime(elapsed), formatTime(limit), percent)
}
