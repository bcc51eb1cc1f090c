package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/voicememo/pkg/collections"
	"github.com/gen2brain/malgo"
)

// FillFunc writes up to frameCount frames of S16LE audio into out.
// It runs on the backend's audio thread and must not block.
type FillFunc func(out []byte, frameCount uint32)

type Device interface {
	// EnumerateDevices lists available capture devices.
	// It ignores any device configuration passed in.
	EnumerateDevices(ctx context.Context) ([]Info, error)

	// CaptureInto initializes the underlying device for capture. Once
	// Start() is called, copies of captured S16LE packets are written into
	// dataC. The caller must Stop() the device before closing dataC.
	CaptureInto(ctx context.Context, dataC chan<- DataPacket) error

	// PlaybackFrom initializes the underlying device for playback. Once
	// Start() is called, fill is invoked whenever the device needs samples.
	PlaybackFrom(ctx context.Context, fill FillFunc) error

	// Start starts the audio device.
	Start(ctx context.Context) error
	// Stop stops the audio device. Blocks until the backend has stopped
	// invoking callbacks. No-op if the device is not allocated.
	Stop(ctx context.Context) error

	// IsStarted returns whether the audio device is currently started.
	IsStarted() bool

	// Dealloc deallocates the underlying audio device and frees resources.
	// Safe to call more than once.
	Dealloc(ctx context.Context)
}

var errNoDevice = errors.New("device nil. has it been allocated?")

type device struct {
	conf DeviceConfig

	mu       sync.Mutex
	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

// NewDevice returns a malgo backed Device. A nil conf uses the defaults.
func NewDevice(conf *DeviceConfig) Device {
	c := DeviceConfig{}
	if conf != nil {
		c = *conf
	}

	return &device{conf: c.WithDefaults()}
}

func (d *device) EnumerateDevices(ctx context.Context) ([]Info, error) {
	// An empty context is fine for just enumerating the available devices.
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	captureDevices, err := devCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get capture devices: %w", err)
	}

	return collections.Apply(captureDevices, malgoDeviceInfoToDeviceInfo), nil
}

func (d *device) CaptureInto(ctx context.Context, dataC chan<- DataPacket) error {
	if dataC == nil {
		return errors.New("data channel is nil. unable to allocate device")
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Capture)
	devCnf.Capture.Format = d.conf.Format
	devCnf.Capture.Channels = uint32(d.conf.CaptureChannels)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, samples []byte, _ uint32) {
			// malgo reuses the input buffer between callbacks
			dataC <- bytes.Clone(samples)
		},
	}

	if err := d.alloc(devCnf, callbacks); err != nil {
		return fmt.Errorf("failed to create malgo capture device: %w", err)
	}

	return nil
}

func (d *device) PlaybackFrom(ctx context.Context, fill FillFunc) error {
	if fill == nil {
		return errors.New("fill func is nil. unable to allocate device")
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Playback)
	devCnf.Playback.Format = d.conf.Format
	devCnf.Playback.Channels = uint32(d.conf.PlaybackChannels)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			fill(out, frameCount)
		},
	}

	if err := d.alloc(devCnf, callbacks); err != nil {
		return fmt.Errorf("failed to create malgo playback device: %w", err)
	}

	return nil
}

func (d *device) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice == nil {
		return errNoDevice
	}

	if d.mgDevice.IsStarted() {
		// noop
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (d *device) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice == nil || !d.mgDevice.IsStarted() {
		// noop
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (d *device) IsStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice == nil {
		return false
	}

	return d.mgDevice.IsStarted()
}

func (d *device) Dealloc(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	uninitializeContext(d.mgCtx)
	d.mgDevice = nil
	d.mgCtx = nil
}

func (d *device) alloc(devCnf malgo.DeviceConfig, callbacks malgo.DeviceCallbacks) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice != nil {
		return errors.New("device already allocated")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		slog.Debug("malgo audio device log", "msg", msg)
	})
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callbacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return fmt.Errorf("failed to initialize malgo device: %w", err)
	}

	d.mgCtx = mgCtx
	d.mgDevice = mgDevice

	return nil
}

type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}
	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

type DataPacket = []byte

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
