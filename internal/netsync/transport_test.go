package netsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_BroadcastsToOthers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	bus := NewMemoryBus()
	a, b, c := bus.Connect(), bus.Connect(), bus.Connect()

	require.NoError(t, a.Send(ctx, []byte("hello")))

	for _, peer := range []Transport{b, c} {
		frame, err := peer.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(frame))
	}

	short, stop := context.WithTimeout(ctx, 20*time.Millisecond)
	defer stop()
	_, err := a.Receive(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "no echo to the sender")
}

func TestMemoryBus_Close(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus()
	a, b := bus.Connect(), bus.Connect()

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err := b.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Send(ctx, []byte("x")), ErrClosed)
	assert.NoError(t, a.Send(ctx, []byte("nobody listening")))
}
