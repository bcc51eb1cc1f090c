package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alkime/voicememo/pkg/channels"
	"github.com/google/uuid"
)

const (
	// levelWindow is how many recent samples are kept for the level meter
	// (one second at 16kHz).
	levelWindow = DefaultSampleRate
	// encodeSendTimeout bounds how long the capture fan-out waits on a
	// slow file writer before dropping a packet.
	encodeSendTimeout = time.Second
)

type recordingState int

const (
	recordingNew recordingState = iota
	recordingPrepared
	recordingStarted
	recordingClosed
)

var errRecordingClosed = errors.New("recording already finalized or discarded")

// fileRecording captures the microphone into a FLAC file.
//
// Capture packets are fanned out to the file writer and to a ring buffer
// used for level metering. Teardown order matters: the device is stopped
// first so no callback can write into the fan-out after it closes.
type fileRecording struct {
	dir       string
	conf      DeviceConfig
	modes     *ModeSwitch
	newDevice func(*DeviceConfig) Device

	mu    sync.Mutex
	state recordingState

	path        string
	file        *os.File
	flac        *FLACWriter
	dev         Device
	writer      *pcmWriter
	levels      *SampleRingBuffer
	fanout      *channels.Broadcaster[DataPacket]
	stopFanout  context.CancelFunc
	encodeC     chan DataPacket
	levelC      chan DataPacket
	levelsDone  chan struct{}
	releaseMode func()
}

// Prepare allocates the output file, the encoder and the capture device.
// Requires a mode that allows recording.
func (r *fileRecording) Prepare(ctx context.Context) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != recordingNew {
		return errors.New("recording already prepared")
	}

	r.releaseMode, err = r.modes.acquireCapture()
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			r.teardown(ctx)
			r.removeFile()
			r.state = recordingClosed
		}
	}()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create recordings directory %s: %w", r.dir, err)
	}

	r.path = filepath.Join(r.dir, "recording-"+uuid.NewString()+".flac")

	r.file, err = os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create recording file %s: %w", r.path, err)
	}

	r.flac, err = NewFLACWriter(r.file, r.conf.SampleRate)
	if err != nil {
		return fmt.Errorf("failed to create flac writer: %w", err)
	}

	r.encodeC = make(chan DataPacket, 64)
	r.levelC = make(chan DataPacket, 16)

	r.fanout = channels.NewBroadcaster[DataPacket]().WithBuffer(64)
	if err := r.fanout.SubscribeWithTimeout(r.encodeC, encodeSendTimeout); err != nil {
		return fmt.Errorf("failed to subscribe writer: %w", err)
	}
	if err := r.fanout.Subscribe(r.levelC); err != nil {
		return fmt.Errorf("failed to subscribe level meter: %w", err)
	}

	var fanoutCtx context.Context
	fanoutCtx, r.stopFanout = context.WithCancel(context.Background())

	input, err := r.fanout.Run(fanoutCtx)
	if err != nil {
		return fmt.Errorf("failed to start capture fan-out: %w", err)
	}

	r.writer, err = newPCMWriter(r.encodeC, r.flac)
	if err != nil {
		return fmt.Errorf("failed to create recording writer: %w", err)
	}
	r.writer.Start(context.Background())

	r.levels = NewSampleRingBuffer(levelWindow)
	r.levelsDone = make(chan struct{})
	go func() {
		defer close(r.levelsDone)
		for packet := range r.levelC {
			r.levels.Write(BytesToInt16(packet))
		}
	}()

	r.dev = r.newDevice(&r.conf)
	if err := r.dev.CaptureInto(ctx, input); err != nil {
		return fmt.Errorf("failed to allocate capture device: %w", err)
	}

	r.state = recordingPrepared

	slog.Debug("recording prepared", "path", r.path)

	return nil
}

// Start starts capturing.
func (r *fileRecording) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != recordingPrepared {
		return errors.New("recording not prepared")
	}

	if err := r.dev.Start(ctx); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	r.state = recordingStarted

	return nil
}

// StopAndFinalize stops capturing, flushes the encoder and returns the
// file:// URI of the finished recording.
func (r *fileRecording) StopAndFinalize(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != recordingStarted {
		return "", errRecordingClosed
	}

	r.state = recordingClosed

	// teardown drops the encoder, which still reports its totals once closed
	enc, writer := r.flac, r.writer

	if err := r.teardown(ctx); err != nil {
		r.removeFile()
		return "", err
	}

	slog.Info("recording finalized",
		"path", r.path,
		"duration", enc.Duration(),
		"bytes", writer.BytesWritten())

	return fileURI(r.path), nil
}

// Discard releases every resource and deletes the partial file.
func (r *fileRecording) Discard(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == recordingClosed {
		return nil
	}

	r.state = recordingClosed

	err := r.teardown(ctx)
	r.removeFile()

	return err
}

// Failed delivers an asynchronous write failure while capturing.
func (r *fileRecording) Failed() <-chan error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer == nil {
		return nil
	}

	return r.writer.Failed()
}

// ReadSamples returns up to n of the most recent captured samples.
func (r *fileRecording) ReadSamples(n int) []int16 {
	r.mu.Lock()
	levels := r.levels
	r.mu.Unlock()

	if levels == nil {
		return nil
	}

	return levels.ReadSamples(n)
}

// teardown releases whatever Prepare managed to allocate, in order:
// device, fan-out, writer, encoder, file, mode. Must hold r.mu.
func (r *fileRecording) teardown(ctx context.Context) error {
	var errs []error

	if r.dev != nil {
		if err := r.dev.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop capture device: %w", err))
		}
		r.dev.Dealloc(ctx)
	}

	if r.stopFanout != nil {
		r.stopFanout()
		r.fanout.Wait()

		for i, st := range r.fanout.Stats() {
			if st.Dropped > 0 {
				slog.Warn("capture packets dropped", "subscriber", i, "dropped", st.Dropped)
			}
		}

		close(r.encodeC)
		close(r.levelC)
		if r.levelsDone != nil {
			<-r.levelsDone
		}
		r.stopFanout = nil
	}

	if r.writer != nil {
		if err := r.writer.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	if r.flac != nil {
		if err := r.flac.Close(); err != nil {
			errs = append(errs, err)
		}
		r.flac = nil
	}

	if r.file != nil {
		// the flac encoder closes the file itself
		if err := r.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close recording file: %w", err))
		}
		r.file = nil
	}

	if r.releaseMode != nil {
		r.releaseMode()
	}

	return errors.Join(errs...)
}

func (r *fileRecording) removeFile() {
	if r.path == "" {
		return
	}

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove partial recording", "path", r.path, "error", err)
	}
}

func fileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// PathFromURI accepts a file:// URI or a plain path.
func PathFromURI(uri string) (string, error) {
	if uri == "" {
		return "", errors.New("empty uri")
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return uri, nil //nolint:nilerr // not a URI, treat as a path
	}

	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}

	return filepath.FromSlash(u.Path), nil
}
