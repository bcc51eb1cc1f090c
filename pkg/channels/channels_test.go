package channels_test

import (
	"testing"
	"time"

	"github.com/alkime/voicememo/pkg/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packets builds a channel of capture packets in the given state.
func packets(capacity int, queued int, closed bool) chan []byte {
	ch := make(chan []byte, capacity)
	for range queued {
		ch <- []byte{0x00, 0x01}
	}
	if closed {
		close(ch)
	}

	return ch
}

func TestSendNonBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ch      chan []byte
		wantErr error
	}{
		{name: "room in buffer", ch: packets(2, 1, false)},
		{name: "buffer full", ch: packets(1, 1, false), wantErr: channels.ErrChannelFull},
		{name: "unbuffered without reader", ch: packets(0, 0, false), wantErr: channels.ErrChannelFull},
		{name: "closed", ch: packets(0, 0, true), wantErr: channels.ErrChannelClosed},
		{name: "closed with queued packets", ch: packets(2, 1, true), wantErr: channels.ErrChannelClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := channels.SendNonBlock(tt.ch, []byte{0xFF, 0x7F})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestSendNonBlock_KeepsQueuedPacketsOnClose(t *testing.T) {
	t.Parallel()

	ch := packets(2, 1, true)
	require.ErrorIs(t, channels.SendNonBlock(ch, nil), channels.ErrChannelClosed)
	assert.Equal(t, []byte{0x00, 0x01}, <-ch)
}

func TestSendWithTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ch      chan []byte
		wantErr error
	}{
		{name: "room in buffer", ch: packets(1, 0, false)},
		{name: "buffer stays full", ch: packets(1, 1, false), wantErr: channels.ErrChannelTimeout},
		{name: "closed", ch: packets(1, 0, true), wantErr: channels.ErrChannelClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := channels.SendWithTimeout(tt.ch, []byte{0x01}, 10*time.Millisecond)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestSendWithTimeout_SlowReader(t *testing.T) {
	t.Parallel()

	ch := make(chan []byte)
	got := make(chan []byte, 1)

	go func() {
		time.Sleep(5 * time.Millisecond)
		got <- <-ch
	}()

	require.NoError(t, channels.SendWithTimeout(ch, []byte{0x02}, time.Second))
	assert.Equal(t, []byte{0x02}, <-got)
}

func TestSendWithTimeout_ReturnsOnDelivery(t *testing.T) {
	t.Parallel()

	// a long timeout must not hold up a send that lands straight away
	ch := make(chan []byte, 100)
	start := time.Now()

	for range 100 {
		require.NoError(t, channels.SendWithTimeout(ch, []byte{0x03}, time.Hour))
	}

	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, ch, 100)
}

func TestSendWithTimeout_WaitsForTimeout(t *testing.T) {
	t.Parallel()

	ch := make(chan []byte)
	start := time.Now()

	require.ErrorIs(t, channels.SendWithTimeout(ch, nil, 20*time.Millisecond), channels.ErrChannelTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
