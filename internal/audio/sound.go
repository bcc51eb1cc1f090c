package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

var errSoundReleased = errors.New("sound released")

// deviceSound plays a decoded recording through a playback Device.
type deviceSound struct {
	uri string
	pcm PCM
	dev Device

	volume atomic.Uint64 // math.Float64bits
	pos    atomic.Int64
	done   chan struct{}
	ended  sync.Once

	mu         sync.Mutex
	onComplete func()
	watching   bool
	released   bool
	release    sync.Once
}

func newDeviceSound(uri string, pcm PCM, dev Device) *deviceSound {
	s := &deviceSound{
		uri:  uri,
		pcm:  pcm,
		dev:  dev,
		done: make(chan struct{}),
	}
	s.volume.Store(math.Float64bits(1))

	return s
}

// load allocates the playback device.
func (s *deviceSound) load(ctx context.Context) error {
	if err := s.dev.PlaybackFrom(ctx, s.fill); err != nil {
		return fmt.Errorf("failed to allocate playback device: %w", err)
	}

	return nil
}

// fill runs on the audio thread.
func (s *deviceSound) fill(out []byte, frameCount uint32) {
	vol := math.Float64frombits(s.volume.Load())
	pos := int(s.pos.Load())
	n := min(int(frameCount), len(out)/2, len(s.pcm.Samples)-pos)
	n = max(n, 0)

	for i := range n {
		v := float64(s.pcm.Samples[pos+i]) * vol
		sample := int16(max(math.MinInt16, min(math.MaxInt16, v)))
		out[i*2] = byte(sample)
		out[i*2+1] = byte(uint16(sample) >> 8)
	}

	clear(out[n*2:])
	s.pos.Add(int64(n))

	if pos+n >= len(s.pcm.Samples) {
		s.ended.Do(func() { close(s.done) })
	}
}

// SetVolume sets the gain in [0, 1].
func (s *deviceSound) SetVolume(v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fmt.Errorf("volume %v out of range [0, 1]", v)
	}

	s.volume.Store(math.Float64bits(v))

	return nil
}

// Play starts the device. OnCompletion fires once the last sample has been
// handed to the device.
func (s *deviceSound) Play(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return errSoundReleased
	}

	if len(s.pcm.Samples) == 0 {
		s.ended.Do(func() { close(s.done) })
	}

	if err := s.dev.Start(ctx); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	if !s.watching {
		s.watching = true
		go s.watch()
	}

	slog.Debug("playback started", "uri", s.uri, "duration", s.pcm.Duration())

	return nil
}

func (s *deviceSound) watch() {
	<-s.done

	// let the device drain its last period
	time.Sleep(50 * time.Millisecond)

	s.mu.Lock()
	cb := s.onComplete
	released := s.released
	s.mu.Unlock()

	if released || cb == nil {
		return
	}

	cb()
}

// OnCompletion registers the callback for natural end of playback. It is
// not called after Release.
func (s *deviceSound) OnCompletion(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onComplete = fn
}

// Release stops the device and frees it. Safe to call more than once,
// including from the completion callback.
func (s *deviceSound) Release() error {
	var err error

	s.release.Do(func() {
		s.mu.Lock()
		s.released = true
		s.mu.Unlock()

		ctx := context.Background()
		err = s.dev.Stop(ctx)
		s.dev.Dealloc(ctx)
		s.ended.Do(func() { close(s.done) })
	})

	return err
}
