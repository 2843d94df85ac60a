package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/netsync"
)

func TestJoin_RelayUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = runRoot(t, "", "join", "--url", "ws://"+addr+"/ws")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to connect to relay")
}

func TestJoin_BadSeat(t *testing.T) {
	_, err := runRoot(t, "", "join", "--seat", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--seat must be between 0 and 1")
}

func TestJoin_AnnouncesAndQuits(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	hub := netsync.NewRelay(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = serveRelay(ctx, ln, "/ws", hub, quietLogger()) }()

	url := "ws://" + ln.Addr().String() + "/ws"
	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	watcher, err := netsync.Dial(dialCtx, url, "friday")
	require.NoError(t, err)
	defer watcher.Close()
	require.Eventually(t, func() bool { return hub.Peers("friday") == 1 }, time.Second, 5*time.Millisecond)

	stdin, input := io.Pipe()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(stdin)
	cmd.SetArgs([]string{"join", "--url", url, "--room", "friday", "--announce"})

	done := make(chan error, 1)
	go func() { done <- cmd.Execute() }()

	frame, err := watcher.Receive(dialCtx)
	require.NoError(t, err)
	msg, err := netsync.Decode(frame, "watcher", "friday")
	require.NoError(t, err)
	assert.Equal(t, netsync.EventSyncScene, msg.EventName)

	_, err = io.WriteString(input, "quit\n")
	require.NoError(t, err)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("join did not return after quit")
	}
	assert.Contains(t, buf.String(), `joined room "friday"`)
	assert.Contains(t, buf.String(), "X to move> ")
}
