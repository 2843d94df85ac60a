package netsync

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_ForwardsWithinRoom(t *testing.T) {
	relay := NewRelay(quietLogger())
	srv := httptest.NewServer(relay)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := Dial(ctx, url, "lobby")
	require.NoError(t, err)
	defer a.Close()
	b, err := Dial(ctx, url, "lobby")
	require.NoError(t, err)
	defer b.Close()
	other, err := Dial(ctx, url, "den")
	require.NoError(t, err)
	defer other.Close()

	require.Eventually(t, func() bool { return relay.Peers("lobby") == 2 && relay.Peers("den") == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, a.Send(ctx, []byte(`{"hello":"lobby"}`)))
	frame, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"lobby"}`, string(frame))

	require.NoError(t, other.Send(ctx, []byte(`{"hello":"den"}`)))
	require.NoError(t, b.Send(ctx, []byte(`{"hello":"back"}`)))
	frame, err = a.Receive(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"back"}`, string(frame), "den traffic never reaches the lobby")
}

func TestRelay_PeerLeaves(t *testing.T) {
	relay := NewRelay(quietLogger())
	srv := httptest.NewServer(relay)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := Dial(ctx, url, "")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return relay.Peers(DefaultRoom) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, a.Close())
	assert.Eventually(t, func() bool { return relay.Peers(DefaultRoom) == 0 }, time.Second, 5*time.Millisecond)
}

func TestRelay_Close(t *testing.T) {
	relay := NewRelay(quietLogger())
	srv := httptest.NewServer(relay)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := Dial(ctx, url, "lobby")
	require.NoError(t, err)
	defer a.Close()
	require.Eventually(t, func() bool { return relay.Peers("lobby") == 1 }, time.Second, 5*time.Millisecond)

	relay.Close()
	assert.Eventually(t, func() bool { return relay.Peers("lobby") == 0 }, time.Second, 5*time.Millisecond)
	_, err = a.Receive(ctx)
	assert.Error(t, err)
}
