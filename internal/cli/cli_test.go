package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alkime/voicememo/internal/cli"
	"github.com/alkime/voicememo/internal/memo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRecorder struct {
	mu       sync.Mutex
	startErr error
	state    memo.State
	stops    int
}

func (m *mockRecorder) StartRecording(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return m.startErr
	}

	m.state = memo.Recording

	return nil
}

func (m *mockRecorder) StopRecording(context.Context) (memo.SavedRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stops++

	if m.state != memo.Recording {
		return memo.SavedRecording{}, &memo.Error{Kind: memo.RecordingStop, Err: memo.ErrNotRecording}
	}

	m.state = memo.Idle

	return memo.SavedRecording{URI: "file:///memos/a.flac", DurationSeconds: 2}, nil
}

func (m *mockRecorder) Snapshot() memo.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return memo.Snapshot{SessionSnapshot: memo.SessionSnapshot{State: m.state, ElapsedSeconds: 2}}
}

func (m *mockRecorder) fail() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = memo.Idle
}

func TestRecord_StopsOnEnter(t *testing.T) {
	t.Parallel()

	rec := &mockRecorder{}
	saved, err := cli.Record(context.Background(), rec, cli.RecordOptions{
		Stdin: strings.NewReader("\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "file:///memos/a.flac", saved.URI)
	assert.Equal(t, 1, rec.stops)
}

func TestRecord_StopsAtMaxDuration(t *testing.T) {
	t.Parallel()

	var progress bytes.Buffer
	rec := &mockRecorder{}

	saved, err := cli.Record(context.Background(), rec, cli.RecordOptions{
		MaxDuration:   100 * time.Millisecond,
		Progress:      &progress,
		ProgressEvery: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved.DurationSeconds)
	assert.Contains(t, progress.String(), "Recording: 00:00:02")
}

func TestRecord_StopsOnContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rec := &mockRecorder{}
	_, err := cli.Record(ctx, rec, cli.RecordOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.stops)
}

func TestRecord_StartFails(t *testing.T) {
	t.Parallel()

	rec := &mockRecorder{startErr: memo.ErrPermissionDenied}
	_, err := cli.Record(context.Background(), rec, cli.RecordOptions{})
	require.ErrorIs(t, err, memo.ErrPermissionDenied)
	assert.Zero(t, rec.stops)
}

func TestRecord_UnexpectedStop(t *testing.T) {
	t.Parallel()

	rec := &mockRecorder{}
	go func() {
		time.Sleep(30 * time.Millisecond)
		rec.fail()
	}()

	_, err := cli.Record(context.Background(), rec, cli.RecordOptions{
		ProgressEvery: 10 * time.Millisecond,
	})
	require.ErrorIs(t, err, cli.ErrStoppedUnexpectedly)
}

type playerFunc func(ctx context.Context, index int) error

func (f playerFunc) Play(ctx context.Context, index int) error { return f(ctx, index) }

func TestPlay_WaitsForFinish(t *testing.T) {
	t.Parallel()

	finished := make(chan struct{})
	p := playerFunc(func(context.Context, int) error {
		time.AfterFunc(20*time.Millisecond, func() { close(finished) })
		return nil
	})

	require.NoError(t, cli.Play(context.Background(), p, 0, finished, nil))
}

func TestPlay_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := cli.Play(context.Background(), playerFunc(func(context.Context, int) error { return boom }), 0, nil, nil)
	require.ErrorIs(t, err, boom)

	err = cli.Play(context.Background(), playerFunc(func(context.Context, int) error { return nil }),
		0, make(chan struct{}), strings.NewReader(" "))
	require.ErrorIs(t, err, cli.ErrPlaybackInterrupted)
}

func TestCatchStopSignals_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	stopC := cli.CatchStopSignals(ctx, nil)

	cancel()

	select {
	case <-stopC:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected stop signal when context cancelled, but timed out")
	}
}

func TestCatchStopSignals_IgnoresOtherInput(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopC := cli.CatchStopSignals(ctx, io.MultiReader(strings.NewReader("abc")))

	select {
	case <-stopC:
		t.Fatal("stopped on unrelated input")
	case <-time.After(50 * time.Millisecond):
	}
}
