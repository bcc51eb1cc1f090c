package audio

import (
	"context"
	"errors"
	"fmt"
)

// Recording is a single microphone capture written to a file.
type Recording interface {
	// Prepare allocates the file and the capture device.
	Prepare(ctx context.Context) error
	// Start begins capturing. Requires Prepare.
	Start(ctx context.Context) error
	// StopAndFinalize stops capturing and returns the URI of the finished
	// file.
	StopAndFinalize(ctx context.Context) (string, error)
	// Discard releases every resource and deletes the file.
	Discard(ctx context.Context) error
	// Failed delivers an asynchronous failure while capturing.
	Failed() <-chan error
	// ReadSamples returns up to n of the most recent samples.
	ReadSamples(n int) []int16
}

// Sound is a loaded recording ready for playback.
type Sound interface {
	SetVolume(v float64) error
	Play(ctx context.Context) error
	// OnCompletion registers fn for when playback reaches the end.
	OnCompletion(fn func())
	// Release stops playback and frees the device. Idempotent.
	Release() error
}

// BackendConfig configures a Backend.
type BackendConfig struct {
	// Dir is where new recordings are written.
	Dir string
	// SampleRate for capture, in Hz. Zero means DefaultSampleRate.
	SampleRate int
	// Probe decides microphone permission. Nil opens the capture device.
	Probe Prober
	// NewDevice allocates devices. Nil uses the malgo backend.
	NewDevice func(*DeviceConfig) Device
}

// Backend is the desktop audio platform: permissions, the process-wide
// mode, recordings and sounds.
type Backend struct {
	conf        BackendConfig
	permissions *Permissions
	modes       *ModeSwitch
}

func NewBackend(conf BackendConfig) (*Backend, error) {
	if conf.Dir == "" {
		return nil, errors.New("recordings directory is required")
	}

	if conf.SampleRate < 0 {
		return nil, errors.New("sample rate must be positive")
	}

	if conf.SampleRate == 0 {
		conf.SampleRate = DefaultSampleRate
	}

	if conf.NewDevice == nil {
		conf.NewDevice = NewDevice
	}

	return &Backend{
		conf:        conf,
		permissions: NewPermissions(conf.Probe),
		modes:       NewModeSwitch(),
	}, nil
}

// RequestPermission asks for microphone access.
func (b *Backend) RequestPermission(ctx context.Context) (bool, error) {
	return b.permissions.Request(ctx)
}

// ConfigureMode switches the process-wide audio mode.
func (b *Backend) ConfigureMode(_ context.Context, mode Mode) error {
	return b.modes.Configure(mode)
}

// Mode returns the current audio mode.
func (b *Backend) Mode() Mode {
	return b.modes.Current()
}

// NewRecording returns an unprepared Recording in the configured directory.
func (b *Backend) NewRecording(_ context.Context) (Recording, error) {
	return &fileRecording{
		dir:       b.conf.Dir,
		conf:      DeviceConfig{SampleRate: b.conf.SampleRate}.WithDefaults(),
		modes:     b.modes,
		newDevice: b.conf.NewDevice,
	}, nil
}

// LoadSound decodes the recording at uri and allocates a playback device.
func (b *Backend) LoadSound(ctx context.Context, uri string) (Sound, error) {
	path, err := PathFromURI(uri)
	if err != nil {
		return nil, err
	}

	pcm, err := DecodeFLAC(path)
	if err != nil {
		return nil, err
	}

	dev := b.conf.NewDevice(&DeviceConfig{SampleRate: pcm.SampleRate})
	s := newDeviceSound(uri, pcm, dev)

	if err := s.load(ctx); err != nil {
		_ = s.Release()
		return nil, err
	}

	return s, nil
}

// EnumerateDevices lists capture devices.
func (b *Backend) EnumerateDevices(ctx context.Context) ([]Info, error) {
	devices, err := b.conf.NewDevice(nil).EnumerateDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	return devices, nil
}
