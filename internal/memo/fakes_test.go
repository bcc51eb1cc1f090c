package memo_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alkime/voicememo/internal/audio"
	"github.com/alkime/voicememo/internal/memo"
)

type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.once.Do(func() { close(t.stopped) }) }

// tick blocks until the session has received the tick; it may not have
// counted it yet.
func (t *fakeTicker) tick() { t.c <- time.Now() }

type fakeTickers struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeTickers) New(time.Duration) memo.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := newFakeTicker()
	f.tickers = append(f.tickers, t)

	return t
}

func (f *fakeTickers) last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.tickers[len(f.tickers)-1]
}

type fakeRecording struct {
	uri         string
	prepareErr  error
	startErr    error
	finalizeErr error
	failed      chan error

	mu        sync.Mutex
	started   bool
	finalized int
	discarded int
}

func (r *fakeRecording) Prepare(context.Context) error { return r.prepareErr }

func (r *fakeRecording) Start(context.Context) error {
	if r.startErr != nil {
		return r.startErr
	}

	r.mu.Lock()
	r.started = true
	r.mu.Unlock()

	return nil
}

func (r *fakeRecording) StopAndFinalize(context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finalized++

	if r.finalizeErr != nil {
		return "", r.finalizeErr
	}

	return r.uri, nil
}

func (r *fakeRecording) Discard(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.discarded++

	return nil
}

func (r *fakeRecording) Failed() <-chan error { return r.failed }

func (r *fakeRecording) ReadSamples(n int) []int16 { return make([]int16, n) }

func (r *fakeRecording) discards() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.discarded
}

type fakeSound struct {
	playErr error

	mu         sync.Mutex
	volume     float64
	onComplete func()
	releases   int
}

func (s *fakeSound) SetVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = v

	return nil
}

func (s *fakeSound) Play(context.Context) error { return s.playErr }

func (s *fakeSound) OnCompletion(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onComplete = fn
}

func (s *fakeSound) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releases++

	return nil
}

// complete simulates the platform reporting natural end of playback.
func (s *fakeSound) complete() {
	s.mu.Lock()
	fn := s.onComplete
	s.mu.Unlock()

	fn()
}

func (s *fakeSound) releaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.releases
}

type fakePlatform struct {
	mu sync.Mutex

	granted       bool
	permissionErr error
	permissionAsk int

	modeErr error
	mode    audio.Mode

	recordings   []*fakeRecording
	nextRecErr   error
	nextRecSetup func(*fakeRecording)

	sounds      map[string]*fakeSound
	loadErr     error
	nextPlayErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{granted: true, sounds: map[string]*fakeSound{}}
}

func (p *fakePlatform) RequestPermission(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.permissionAsk++

	return p.granted, p.permissionErr
}

func (p *fakePlatform) ConfigureMode(_ context.Context, mode audio.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.modeErr != nil {
		return p.modeErr
	}

	p.mode = mode

	return nil
}

func (p *fakePlatform) NewRecording(context.Context) (audio.Recording, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nextRecErr != nil {
		return nil, p.nextRecErr
	}

	rec := &fakeRecording{
		uri:    fmt.Sprintf("file:///memos/recording-%d.flac", len(p.recordings)+1),
		failed: make(chan error, 1),
	}
	if p.nextRecSetup != nil {
		p.nextRecSetup(rec)
	}

	p.recordings = append(p.recordings, rec)

	return rec, nil
}

func (p *fakePlatform) LoadSound(_ context.Context, uri string) (audio.Sound, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loadErr != nil {
		return nil, p.loadErr
	}

	s := &fakeSound{playErr: p.nextPlayErr}
	p.sounds[uri] = s

	return s, nil
}

func (p *fakePlatform) lastRecording() *fakeRecording {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.recordings[len(p.recordings)-1]
}

func (p *fakePlatform) sound(uri string) *fakeSound {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sounds[uri]
}

var errBoom = errors.New("boom")
