package memo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alkime/voicememo/internal/audio"
)

// PlaybackScope decides which plays are rejected while something plays.
type PlaybackScope string

const (
	// ScopeItem rejects replaying the current target; another target
	// replaces it.
	ScopeItem PlaybackScope = "item"
	// ScopeGlobal rejects every play while anything plays.
	ScopeGlobal PlaybackScope = "global"
)

func ParsePlaybackScope(s string) (PlaybackScope, error) {
	switch p := PlaybackScope(s); p {
	case "":
		return ScopeItem, nil
	case ScopeItem, ScopeGlobal:
		return p, nil
	default:
		return "", fmt.Errorf("unknown playback scope %q", s)
	}
}

// Player is the slice of the audio platform playback needs.
type Player interface {
	ConfigureMode(ctx context.Context, mode audio.Mode) error
	LoadSound(ctx context.Context, uri string) (audio.Sound, error)
}

// PlaybackHandle is a loaded sound bound to a recording.
type PlaybackHandle struct {
	Recording SavedRecording

	sound   audio.Sound
	playing atomic.Bool
	once    sync.Once
}

// Playing reports whether the sound is still playing.
func (h *PlaybackHandle) Playing() bool {
	return h.playing.Load()
}

func (h *PlaybackHandle) release() {
	h.playing.Store(false)
	h.once.Do(func() {
		if err := h.sound.Release(); err != nil {
			slog.Warn("failed to release sound", "uri", h.Recording.URI, "error", err)
		}
	})
}

// PlaybackController keeps at most one live PlaybackHandle.
type PlaybackController struct {
	player Player
	scope  PlaybackScope

	// OnFinished is called when a recording plays to the end.
	OnFinished func(rec SavedRecording)

	mu     sync.Mutex
	active *PlaybackHandle
}

func NewPlaybackController(player Player, scope PlaybackScope) *PlaybackController {
	if scope == "" {
		scope = ScopeItem
	}

	return &PlaybackController{player: player, scope: scope}
}

// Play loads and starts rec. On any failure the sound is released and the
// previous handle, if it was not superseded, is left alone.
func (c *PlaybackController) Play(ctx context.Context, rec SavedRecording) (*PlaybackHandle, error) {
	if rec.URI == "" {
		return nil, wrap(PlaybackLoad, ErrEmptyURI)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil && c.active.Playing() {
		if c.scope == ScopeGlobal || c.active.Recording.URI == rec.URI {
			return nil, wrap(PlaybackStart, ErrAlreadyPlaying)
		}

		slog.Debug("superseding playback", "from", c.active.Recording.URI, "to", rec.URI)
		c.active.release()
		c.active = nil
	}

	if err := c.player.ConfigureMode(ctx, audio.PlaybackMode); err != nil {
		return nil, wrap(PlaybackStart, fmt.Errorf("failed to configure audio mode: %w", err))
	}

	sound, err := c.player.LoadSound(ctx, rec.URI)
	if err != nil {
		return nil, wrap(PlaybackLoad, err)
	}

	h := &PlaybackHandle{Recording: rec, sound: sound}

	if err := sound.SetVolume(1.0); err != nil {
		h.release()
		return nil, wrap(PlaybackStart, err)
	}

	sound.OnCompletion(func() { c.finish(h) })

	h.playing.Store(true)

	if err := sound.Play(ctx); err != nil {
		h.release()
		return nil, wrap(PlaybackStart, err)
	}

	c.active = h

	slog.Info("playback started", "uri", rec.URI)

	return h, nil
}

// finish handles natural completion of h. A handle that was superseded or
// closed in the meantime is ignored, even if its completion was already on
// the way.
func (c *PlaybackController) finish(h *PlaybackHandle) {
	c.mu.Lock()
	current := c.active == h
	if current {
		c.active = nil
	}
	c.mu.Unlock()

	if !current {
		return
	}

	h.release()

	slog.Info("playback finished", "uri", h.Recording.URI)

	if c.OnFinished != nil {
		c.OnFinished(h.Recording)
	}
}

// Playing returns the recording currently playing.
func (c *PlaybackController) Playing() (SavedRecording, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || !c.active.Playing() {
		return SavedRecording{}, false
	}

	return c.active.Recording, true
}

// IsPlaying reports whether rec is the recording currently playing.
func (c *PlaybackController) IsPlaying(rec SavedRecording) bool {
	playing, ok := c.Playing()
	return ok && playing.URI == rec.URI
}

// Scope returns the configured playback scope.
func (c *PlaybackController) Scope() PlaybackScope {
	return c.scope
}

// Close releases the active handle.
func (c *PlaybackController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.release()
		c.active = nil
	}
}
