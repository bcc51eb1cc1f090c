package audio

import (
	"github.com/gen2brain/malgo"
)

const (
	// DefaultSampleRate is 16kHz, plenty for voice memos.
	DefaultSampleRate = 16_000
	// DefaultChannels is mono (1 channel).
	DefaultChannels = 1
)

type DeviceConfig struct {
	Format           malgo.FormatType
	CaptureChannels  int
	PlaybackChannels int
	SampleRate       int
}

// WithDefaults returns a config with default values applied to zero fields.
// Only S16 mono is produced by the capture path.
func (c DeviceConfig) WithDefaults() DeviceConfig {
	if c.Format == malgo.FormatUnknown {
		c.Format = malgo.FormatS16
	}

	if c.CaptureChannels == 0 {
		c.CaptureChannels = DefaultChannels
	}

	if c.PlaybackChannels == 0 {
		c.PlaybackChannels = DefaultChannels
	}

	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}

	return c
}
