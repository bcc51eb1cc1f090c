package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// Prober checks whether the microphone can be opened. A nil error grants
// access.
type Prober func(ctx context.Context) error

// Permissions decides microphone access once per process. Desktop
// platforms surface their own consent prompt the first time a capture
// device is opened, so the probe doubles as the prompt.
type Permissions struct {
	probe Prober

	mu      sync.Mutex
	decided bool
	granted bool
}

// NewPermissions returns Permissions backed by probe. A nil probe opens
// the default capture device.
func NewPermissions(probe Prober) *Permissions {
	if probe == nil {
		probe = ProbeCaptureDevice
	}

	return &Permissions{probe: probe}
}

// Request returns the cached decision, probing the first time. Only a
// cancelled context yields an error; probe failures are a denial.
func (p *Permissions) Request(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.decided {
		return p.granted, nil
	}

	err := p.probe(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, fmt.Errorf("permission request interrupted: %w", ctxErr)
	}

	p.decided = true
	p.granted = err == nil

	if err != nil {
		slog.Warn("microphone access denied", "error", err)
	} else {
		slog.Debug("microphone access granted")
	}

	return p.granted, nil
}

// ProbeCaptureDevice verifies that at least one capture device exists and
// that the default one can be initialized.
func ProbeCaptureDevice(ctx context.Context) error {
	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(mgCtx)

	devices, err := mgCtx.Devices(malgo.Capture)
	if err != nil {
		return fmt.Errorf("failed to get capture devices: %w", err)
	}

	if len(devices) == 0 {
		return errors.New("no capture devices available")
	}

	conf := DeviceConfig{}.WithDefaults()
	devCnf := malgo.DefaultDeviceConfig(malgo.Capture)
	devCnf.Capture.Format = conf.Format
	devCnf.Capture.Channels = uint32(conf.CaptureChannels)
	devCnf.SampleRate = uint32(conf.SampleRate)

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, malgo.DeviceCallbacks{})
	if err != nil {
		return fmt.Errorf("failed to open default capture device: %w", err)
	}
	mgDevice.Uninit()

	return nil
}
