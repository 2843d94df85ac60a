package netsync

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/claim"
	"github.com/roach88/hypertoe/internal/engine"
	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type peer struct {
	loop *engine.Loop
	gw   *Gateway
}

// startPeer runs a loop and a gateway on bus until the test ends.
func startPeer(t *testing.T, bus *MemoryBus, origin string, seed uint64) *peer {
	t.Helper()
	return startPeerWith(t, bus, origin, []game.Option{game.WithSeeds(game.FixedSeeds(seed))})
}

func startPeerWith(t *testing.T, bus *MemoryBus, origin string, gameOpts []game.Option, gwOpts ...GatewayOption) *peer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	gw := NewGateway(bus.Connect(), origin, "lobby", append([]GatewayOption{WithGatewayLogger(quietLogger())}, gwOpts...)...)
	loop := engine.New(append(gameOpts,
		game.WithResetDelay(0),
		game.WithLogger(quietLogger()),
		game.WithListener(gw),
	), engine.WithLogger(quietLogger()))

	loopDone := make(chan struct{})
	gwDone := make(chan struct{})
	go func() { defer close(loopDone); _ = loop.Run(ctx) }()
	go func() { defer close(gwDone); _ = gw.Run(ctx, loop) }()
	t.Cleanup(func() {
		cancel()
		<-loopDone
		<-gwDone
	})

	require.Eventually(t, gw.started.Load, time.Second, 5*time.Millisecond)
	return &peer{loop: loop, gw: gw}
}

func query[T any](t *testing.T, p *peer, fn func(*game.Engine) T) T {
	t.Helper()
	v, _ := engine.Query(context.Background(), p.loop, fn)
	return v
}

func TestGateway_SceneAndPreferencesFollow(t *testing.T) {
	bus := NewMemoryBus()
	a := startPeer(t, bus, "peer-a", 1)
	b := startPeer(t, bus, "peer-b", 2)

	require.NoError(t, a.loop.Do(context.Background(), "configure", func(e *game.Engine) {
		e.SetBoardSize(4)
		e.SetScoreMode(game.ScoreHighest)
	}))
	want := query(t, a, (*game.Engine).Config)
	wantPrefs := query(t, a, (*game.Engine).Preferences)

	assert.Eventually(t, func() bool {
		return query(t, b, (*game.Engine).Config) == want
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(wantPrefs, query(t, b, (*game.Engine).Preferences))
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGateway_HumanMovesFollow(t *testing.T) {
	bus := NewMemoryBus()
	a := startPeer(t, bus, "peer-a", 1)
	b := startPeer(t, bus, "peer-b", 1)

	res, err := a.loop.SubmitMove(context.Background(), 4, 0)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	assert.Eventually(t, func() bool {
		return query(t, b, func(e *game.Engine) claim.State { return e.CellState(4) }) == claim.ClaimedBy(0)
	}, 2*time.Second, 10*time.Millisecond)

	res, err = b.loop.SubmitMove(context.Background(), 0, 1)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	assert.Eventually(t, func() bool {
		return query(t, a, func(e *game.Engine) int { return e.Round().TurnCount }) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, a.gw.Dropped())
}

func TestGateway_Announce(t *testing.T) {
	bus := NewMemoryBus()
	a := startPeer(t, bus, "peer-a", 1)

	require.NoError(t, a.loop.Do(context.Background(), "configure", func(e *game.Engine) {
		e.SetPlayerCount(3)
	}))
	want := query(t, a, (*game.Engine).Config)

	// b joins after the change and asks nothing; a announces.
	b := startPeer(t, bus, "peer-b", 7)
	require.True(t, a.gw.Announce())

	assert.Eventually(t, func() bool {
		return query(t, b, (*game.Engine).Config) == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGateway_AnnounceOnStart(t *testing.T) {
	bus := NewMemoryBus()
	b := startPeer(t, bus, "peer-b", 7)

	cfg := game.DefaultConfig()
	cfg.BoardSize = 5
	cfg.WinLength = 4
	a := startPeerWith(t, bus, "peer-a", []game.Option{
		game.WithConfig(cfg),
		game.WithSeeds(game.FixedSeeds(1)),
	}, WithAnnounce())
	want := query(t, a, (*game.Engine).Config)

	assert.Eventually(t, func() bool {
		return query(t, b, (*game.Engine).Config) == want
	}, 2*time.Second, 10*time.Millisecond)
}

// The handlers below drive apply directly on one engine.

func newApplyEngine(t *testing.T, gw *Gateway) *game.Engine {
	t.Helper()
	return game.New(
		game.WithScheduler(testutil.NewManualScheduler()),
		game.WithSeeds(game.FixedSeeds(3)),
		game.WithLogger(quietLogger()),
		game.WithListener(gw),
	)
}

func TestGateway_ParksPreferencesForOtherBoards(t *testing.T) {
	gw := NewGateway(NewMemoryBus().Connect(), "peer-b", "lobby", WithGatewayLogger(quietLogger()))
	e := newApplyEngine(t, gw)

	prefs := make([]int, 16)
	for i := range prefs {
		prefs[i] = 15 - i
	}
	gw.apply(e, Message{EventName: EventSyncAI, Origin: "peer-a", AI: &AIPayload{Cells: 16, Preferences: prefs}})
	require.NotNil(t, gw.parked, "3x3 board cannot take a 16-cell order")
	assert.Len(t, e.Preferences(), 9)

	cfg := e.Config()
	cfg.BoardSize = 4
	cfg.WinLength = 4
	scene := SceneFromConfig(cfg)
	gw.apply(e, Message{EventName: EventSyncScene, Origin: "peer-a", Scene: &scene})

	assert.Nil(t, gw.parked)
	assert.Equal(t, prefs, e.Preferences())
}

func TestGateway_PreferencesSurviveSceneOnSameBoard(t *testing.T) {
	gw := NewGateway(NewMemoryBus().Connect(), "peer-b", "lobby", WithGatewayLogger(quietLogger()))
	cfg := game.DefaultConfig()
	cfg.BoardSize = 4
	cfg.WinLength = 4
	e := game.New(
		game.WithConfig(cfg),
		game.WithScheduler(testutil.NewManualScheduler()),
		game.WithSeeds(game.FixedSeeds(3, 4)),
		game.WithLogger(quietLogger()),
		game.WithListener(gw),
	)

	prefs := make([]int, 16)
	for i := range prefs {
		prefs[i] = 15 - i
	}
	// The sender's order overtakes the scene that changed its win length.
	gw.apply(e, Message{EventName: EventSyncAI, Origin: "peer-a", AI: &AIPayload{Cells: 16, Preferences: prefs}})
	require.Nil(t, gw.parked)
	require.Equal(t, prefs, e.Preferences())

	cfg.WinLength = 3
	scene := SceneFromConfig(cfg)
	gw.apply(e, Message{EventName: EventSyncScene, Origin: "peer-a", Scene: &scene})

	assert.Equal(t, 3, e.Config().WinLength)
	assert.Equal(t, prefs, e.Preferences())
}

func TestGateway_DoesNotEchoAppliedMessages(t *testing.T) {
	gw := NewGateway(NewMemoryBus().Connect(), "peer-b", "lobby", WithGatewayLogger(quietLogger()))
	e := newApplyEngine(t, gw)
	gw.started.Store(true)

	gw.apply(e, Message{EventName: EventPlayerMove, Origin: "peer-a", Move: &MovePayload{Cell: 4, Player: 0}})
	assert.Equal(t, claim.ClaimedBy(0), e.CellState(4))
	assert.Empty(t, gw.out)

	// A local human move is broadcast.
	require.True(t, e.SubmitMove(0, 1).Accepted)
	require.Len(t, gw.out, 1)
	msg, err := Decode(<-gw.out, "peer-a", "lobby")
	require.NoError(t, err)
	assert.Equal(t, MovePayload{Cell: 0, Player: 1}, *msg.Move)
}

func TestGateway_AIMovesStayLocal(t *testing.T) {
	gw := NewGateway(NewMemoryBus().Connect(), "peer-b", "lobby", WithGatewayLogger(quietLogger()))
	e := newApplyEngine(t, gw)
	gw.started.Store(true)
	e.SetPlayerAI(1, true)
	e.SetAIDelay(0)
	for len(gw.out) > 0 {
		<-gw.out
	}

	require.True(t, e.SubmitMove(4, 0).Accepted)
	require.Equal(t, 2, e.Round().TurnCount, "the AI answered synchronously")
	assert.Len(t, gw.out, 1, "only the human move is sent")
}
