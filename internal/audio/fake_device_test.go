package audio_test

import (
	"context"
	"errors"
	"sync"

	"github.com/alkime/voicememo/internal/audio"
)

// fakeDevice stands in for the malgo backend. Captured packets are pushed
// with emit; playback is driven with pull.
type fakeDevice struct {
	mu       sync.Mutex
	dataC    chan<- audio.DataPacket
	fill     audio.FillFunc
	started  bool
	stops    int
	deallocs int
	startErr error
}

type fakeDevices struct {
	mu      sync.Mutex
	devices []*fakeDevice
}

func (f *fakeDevices) New(*audio.DeviceConfig) audio.Device {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := &fakeDevice{}
	f.devices = append(f.devices, d)

	return d
}

func (f *fakeDevices) Last() *fakeDevice {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.devices) == 0 {
		return nil
	}

	return f.devices[len(f.devices)-1]
}

func (d *fakeDevice) EnumerateDevices(context.Context) ([]audio.Info, error) {
	return []audio.Info{{Name: "fake mic", IsDefault: true}}, nil
}

func (d *fakeDevice) CaptureInto(_ context.Context, dataC chan<- audio.DataPacket) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dataC = dataC

	return nil
}

func (d *fakeDevice) PlaybackFrom(_ context.Context, fill audio.FillFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fill = fill

	return nil
}

func (d *fakeDevice) Start(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.startErr != nil {
		return d.startErr
	}

	if d.dataC == nil && d.fill == nil {
		return errors.New("not allocated")
	}

	d.started = true

	return nil
}

func (d *fakeDevice) Stop(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.started = false
	d.stops++

	return nil
}

func (d *fakeDevice) IsStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.started
}

func (d *fakeDevice) Dealloc(context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deallocs++
	d.dataC = nil
	d.fill = nil
}

// emit delivers a captured packet like the audio thread would.
func (d *fakeDevice) emit(samples []int16) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started && d.dataC != nil {
		d.dataC <- audio.Int16ToBytes(samples)
	}
}

// pull asks the sound for frames mono samples.
func (d *fakeDevice) pull(frames int) []int16 {
	d.mu.Lock()
	fill := d.fill
	d.mu.Unlock()

	if fill == nil {
		return nil
	}

	out := make([]byte, frames*2)
	fill(out, uint32(frames))

	return audio.BytesToInt16(out)
}

func (d *fakeDevice) deallocCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.deallocs
}
