package channels_test

import (
	"context"
	"testing"
	"time"

	"github.com/alkime/voicememo/pkg/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster(t *testing.T) {
	t.Run("error cases", func(t *testing.T) {
		t.Run("subscribe with nil channel", func(t *testing.T) {
			fo := channels.NewBroadcaster[int]()
			err := fo.Subscribe(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot be nil")
		})

		t.Run("subscribe with non-positive timeout", func(t *testing.T) {
			fo := channels.NewBroadcaster[int]()
			err := fo.SubscribeWithTimeout(make(chan int, 1), 0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "must be positive")
		})

		t.Run("run with no subscribers", func(t *testing.T) {
			_, err := channels.NewBroadcaster[int]().Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "no subscribers")
		})

		t.Run("run twice", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fo := channels.NewBroadcaster[int]()
			require.NoError(t, fo.Subscribe(make(chan int, 10)))

			_, err := fo.Run(ctx)
			require.NoError(t, err)

			_, err = fo.Run(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "already started")
		})
	})

	t.Run("every subscriber receives every message", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		fo := channels.NewBroadcaster[int]().WithBuffer(16)
		sub1 := make(chan int, 10)
		sub2 := make(chan int, 10)
		require.NoError(t, fo.Subscribe(sub1))
		require.NoError(t, fo.SubscribeWithTimeout(sub2, time.Second))

		input, err := fo.Run(ctx)
		require.NoError(t, err)

		input <- 1
		input <- 2
		input <- 3

		cancel()
		fo.Wait()
		close(sub1)
		close(sub2)

		assert.Equal(t, []int{1, 2, 3}, receiveAll(sub1, 10*time.Millisecond))
		assert.Equal(t, []int{1, 2, 3}, receiveAll(sub2, 10*time.Millisecond))
	})

	t.Run("full subscriber drops while ready subscriber receives", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		fo := channels.NewBroadcaster[int]()
		fullSub := make(chan int, 1)
		fullSub <- 99
		readySub := make(chan int, 10)
		require.NoError(t, fo.Subscribe(fullSub))
		require.NoError(t, fo.Subscribe(readySub))

		input, err := fo.Run(ctx)
		require.NoError(t, err)

		for i := 1; i <= 5; i++ {
			input <- i
		}

		cancel()
		fo.Wait()

		stats := fo.Stats()
		require.Len(t, stats, 2)
		assert.Equal(t, 5, stats[0].Dropped)
		assert.Equal(t, 0, stats[1].Dropped)

		close(readySub)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, receiveAll(readySub, 10*time.Millisecond))
	})

	t.Run("closed subscriber goes inactive", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		fo := channels.NewBroadcaster[int]()
		closedSub := make(chan int, 10)
		require.NoError(t, fo.Subscribe(closedSub))
		close(closedSub)

		input, err := fo.Run(ctx)
		require.NoError(t, err)

		input <- 1
		input <- 2

		cancel()
		fo.Wait()

		stats := fo.Stats()
		require.Len(t, stats, 1)
		assert.True(t, stats[0].Inactive)
		assert.Equal(t, 2, stats[0].Dropped)
	})
}
