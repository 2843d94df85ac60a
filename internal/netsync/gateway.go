package netsync

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/roach88/hypertoe/internal/game"
)

const outboxSize = 64

// Runner schedules work on the goroutine that owns the engine.
// engine.Loop satisfies it.
type Runner interface {
	Enqueue(name string, fn func(*game.Engine)) bool
}

// Gateway connects one engine to a Transport. Register it as a listener
// on the engine (game.WithListener) so local changes are broadcast, then
// call Run.
//
// OnEvent and the apply tasks run on the engine goroutine; the applying
// flag and the parked AI payload are touched only there.
type Gateway struct {
	transport Transport
	origin    string
	room      string
	logger    *slog.Logger

	runner  atomic.Pointer[runnerBox]
	started atomic.Bool
	out     chan []byte

	applying bool
	parked   *AIPayload
	announce bool

	dropped atomic.Int64
}

type runnerBox struct{ r Runner }

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayLogger sets the gateway's logger.
func WithGatewayLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// WithAnnounce makes Run announce the local scene as soon as it starts.
func WithAnnounce() GatewayOption {
	return func(g *Gateway) { g.announce = true }
}

// NewGateway creates a gateway for peer origin in room.
func NewGateway(t Transport, origin, room string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		transport: t,
		origin:    origin,
		room:      room,
		logger:    slog.Default(),
		out:       make(chan []byte, outboxSize),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("origin", origin, "room", room)
	return g
}

// Origin returns this peer's identifier.
func (g *Gateway) Origin() string { return g.origin }

// Dropped returns how many inbound frames were discarded.
func (g *Gateway) Dropped() int64 { return g.dropped.Load() }

// OnEvent implements game.Listener. Events caused by applying a peer's
// message are not echoed, and neither are AI moves.
func (g *Gateway) OnEvent(ev game.Event) {
	if !g.started.Load() || g.applying {
		return
	}
	switch ev.Kind {
	case game.EventMoveApplied:
		if ev.Source != game.SourceHuman {
			return
		}
		g.send(EventPlayerMove, MovePayload{Cell: ev.Cell, Player: ev.Player})
	case game.EventConfigChanged:
		g.send(EventSyncScene, SceneFromConfig(ev.Config))
	case game.EventPreferencesChanged:
		g.send(EventSyncAI, AIPayload{Cells: len(ev.Preferences), Preferences: ev.Preferences})
	}
}

// Announce broadcasts the full local scene and preference order, for a
// peer that joins an existing room or hosts a new one.
func (g *Gateway) Announce() bool {
	box := g.runner.Load()
	if box == nil {
		return false
	}
	return box.r.Enqueue("netsync.announce", func(e *game.Engine) {
		g.send(EventSyncScene, SceneFromConfig(e.Config()))
		prefs := e.Preferences()
		g.send(EventSyncAI, AIPayload{Cells: len(prefs), Preferences: prefs})
	})
}

func (g *Gateway) send(event string, payload any) {
	frame, err := Encode(event, g.origin, g.room, payload)
	if err != nil {
		g.logger.Error("encode outbound message", "event", event, "error", err)
		return
	}
	select {
	case g.out <- frame:
	default:
		g.logger.Warn("outbox full, message dropped", "event", event)
	}
}

// Run pumps frames in both directions until ctx is done or the transport
// closes. Inbound messages are applied through runner.
func (g *Gateway) Run(ctx context.Context, runner Runner) error {
	g.runner.Store(&runnerBox{r: runner})
	g.started.Store(true)
	defer g.started.Store(false)
	if g.announce {
		g.Announce()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sendErr := make(chan error, 1)
	go func() { sendErr <- g.sendLoop(ctx) }()

	recvErr := g.receiveLoop(ctx, runner)
	cancel()
	if err := <-sendErr; err != nil && recvErr == nil {
		recvErr = err
	}
	if errors.Is(recvErr, context.Canceled) || errors.Is(recvErr, ErrClosed) {
		return nil
	}
	return recvErr
}

func (g *Gateway) sendLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-g.out:
			if err := g.transport.Send(ctx, frame); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (g *Gateway) receiveLoop(ctx context.Context, runner Runner) error {
	for {
		frame, err := g.transport.Receive(ctx)
		if err != nil {
			return err
		}
		msg, err := Decode(frame, g.origin, g.room)
		if err != nil {
			g.dropped.Add(1)
			g.logger.Debug("inbound frame dropped", "code", DropCodeOf(err), "error", err)
			continue
		}
		if !runner.Enqueue("netsync."+msg.EventName, func(e *game.Engine) { g.apply(e, msg) }) {
			return ErrClosed
		}
	}
}

// apply runs on the engine goroutine.
func (g *Gateway) apply(e *game.Engine, msg Message) {
	g.applying = true
	defer func() { g.applying = false }()

	switch {
	case msg.Scene != nil:
		if e.Apply(msg.Scene.Config()) {
			g.logger.Info("scene applied", "from", msg.Origin)
		}
		if p := g.parked; p != nil {
			g.parked = nil
			g.applyAI(e, *p, msg.Origin)
		}
	case msg.AI != nil:
		g.applyAI(e, *msg.AI, msg.Origin)
	case msg.Move != nil:
		res := e.SubmitMove(msg.Move.Cell, msg.Move.Player)
		if !res.Accepted {
			g.logger.Warn("peer move rejected",
				"from", msg.Origin,
				"cell", msg.Move.Cell,
				"player", msg.Move.Player,
				"reason", res.Reason.String(),
			)
		}
	}
}

// applyAI installs a peer's preference order. An order for a different
// board size waits for the scene message that resizes the board.
func (g *Gateway) applyAI(e *game.Engine, p AIPayload, from string) {
	if p.Cells != e.Board().Cells() {
		g.parked = &AIPayload{Cells: p.Cells, Preferences: slices.Clone(p.Preferences)}
		g.logger.Debug("preferences parked", "from", from, "cells", p.Cells)
		return
	}
	if !e.SetPreferences(p.Preferences) {
		g.logger.Warn("invalid peer preferences", "from", from, "cells", p.Cells)
	}
}
