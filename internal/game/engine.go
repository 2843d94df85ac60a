// Package game implements the turn state machine: move validation, line
// scoring, round resets and the timed modifiers (AI delay, countdown,
// blind reveals).
//
// Engine is the single owner of the board, claim store and round state.
// It is NOT safe for concurrent use: every call, including scheduler
// callbacks, must happen on one goroutine. engine.Loop provides that
// goroutine for interactive and networked play.
package game

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/roach88/hypertoe/internal/ai"
	"github.com/roach88/hypertoe/internal/board"
	"github.com/roach88/hypertoe/internal/claim"
	"github.com/roach88/hypertoe/internal/combo"
)

// DefaultResetDelay is how long a finished round stays on screen before the
// next one starts.
const DefaultResetDelay = 800 * time.Millisecond

// Phase is the engine's position in the turn cycle.
type Phase uint8

const (
	PhaseAwaitingMove Phase = iota
	PhaseEvaluating
	PhaseRoundOver
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingMove:
		return "awaiting_move"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseRoundOver:
		return "round_over"
	default:
		return "unknown"
	}
}

// Round is a snapshot of the current round.
type Round struct {
	Number      int                 `json:"number"`
	CurrentTurn int                 `json:"currentTurn"`
	TurnCount   int                 `json:"turnCount"`
	LastClaimed int                 `json:"lastClaimed"`
	DeadCells   []int               `json:"deadCells"`
	Claimed     []combo.Combination `json:"claimed"`
}

// Engine runs one match at a time. A match is a run of rounds under one
// structural configuration and one random seed.
//
// INVARIANTS:
//   - only the engine mutates claims, combinations and round state
//   - turnCount counts claims, never passes
//   - a timer callback acts only if the token it was armed with is current
type Engine struct {
	cfg    Config
	board  board.Board
	combos *combo.Cache
	set    *combo.Set

	active  []combo.Combination
	claimed []combo.Combination
	claims  *claim.Store
	players []Player
	prefs   []int

	round       int
	currentTurn int
	turnCount   int
	lastClaimed int
	deadCells   []int
	phase       Phase
	pristine    bool

	seed  uint64
	rng   *rand.Rand
	seeds SeedSource

	sched      Scheduler
	resetDelay time.Duration
	token      uint64
	turnStops  []func()
	resetStop  func()

	hidden    bool
	blindGen  uint64
	blindStop func()

	aiSeats   map[int]bool
	listeners []Listener
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the initial configuration. It is clamped before use.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithScheduler sets the timer source. Default: NoTimers.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithSeeds sets where match seeds come from. Default: CryptoSeeds.
func WithSeeds(s SeedSource) Option {
	return func(e *Engine) { e.seeds = s }
}

// WithResetDelay sets how long RoundOver lasts. Zero resets synchronously.
func WithResetDelay(d time.Duration) Option {
	return func(e *Engine) { e.resetDelay = max(d, 0) }
}

// WithAIPlayers marks seats as computer-controlled whenever they are
// created.
func WithAIPlayers(ids ...int) Option {
	return func(e *Engine) {
		for _, id := range ids {
			e.aiSeats[id] = true
		}
	}
}

// WithListener registers a listener before the first match starts, so it
// sees the initial MatchStarted event.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, l) }
}

// WithComboCache shares a combination cache between engines.
func WithComboCache(c *combo.Cache) Option {
	return func(e *Engine) { e.combos = c }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine and starts its first match.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:         DefaultConfig(),
		combos:      combo.NewCache(),
		seeds:       CryptoSeeds,
		sched:       NoTimers{},
		resetDelay:  DefaultResetDelay,
		lastClaimed: -1,
		aiSeats:     make(map[int]bool),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg = e.cfg.Clamp()
	e.startMatch(SourceSystem)
	e.startBlind()
	return e
}

// AddListener registers l for subsequent events.
func (e *Engine) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

func (e *Engine) emit(ev Event) {
	ev.Round = e.round
	for _, l := range e.listeners {
		l.OnEvent(ev)
	}
}

// startMatch reseeds and rebuilds everything the structural configuration
// determines. Regeneration completes before any event is emitted.
func (e *Engine) startMatch(src Source) {
	e.stopTurnTimers()
	e.stopReset()
	e.token++

	e.seed = e.seeds.NextSeed()
	e.rng = rand.New(rand.NewPCG(e.seed, e.seed^0x9e3779b97f4a7c15))

	rebuilt := e.board.Dimension() != e.cfg.Dimension || e.board.Size() != e.cfg.BoardSize
	if rebuilt {
		e.board = board.MustNew(e.cfg.Dimension, e.cfg.BoardSize)
		e.claims = claim.New(e.board.Cells())
	}
	set, err := e.combos.Get(e.board, e.cfg.WinLength)
	if err != nil {
		// Unreachable after Clamp; keep the previous set rather than panic.
		e.logger.Error("generate combinations", "board", e.board.String(), "win_length", e.cfg.WinLength, "error", err)
	} else {
		e.set = set
	}

	e.claims.ResetAll()
	e.deadCells = board.DeadCells(e.rng, e.board, e.cfg.DeadCells)
	for _, cell := range e.deadCells {
		e.claims.MarkDead(cell)
	}
	// Always drawn, so the rng stream does not depend on the previous match.
	// A board of the same shape keeps its order.
	prefs := ai.Shuffle(e.rng, e.board.Cells())
	if rebuilt {
		e.prefs = prefs
	}
	e.resizePlayers()

	e.active = e.set.All()
	e.claimed = nil
	e.round = 1
	e.currentTurn = 0
	e.turnCount = 0
	e.lastClaimed = -1
	e.pristine = true

	e.logger.Debug("match started",
		"board", e.board.String(),
		"win_length", e.cfg.WinLength,
		"players", e.cfg.PlayerCount,
		"combinations", len(e.active),
		"seed", e.seed,
		"rebuilt", rebuilt)

	e.emit(Event{Kind: EventMatchStarted, Source: src, Config: e.cfg, Seed: e.seed, Players: slices.Clone(e.players)})
	if rebuilt {
		e.emit(Event{Kind: EventPreferencesChanged, Source: SourceSystem, Preferences: slices.Clone(e.prefs)})
	}
	e.beginTurn(true)
}

// resizePlayers keeps existing seats, adds new ones and drops extras.
// A colour is drawn for every seat so the rng stream does not depend on
// how many seats already existed.
func (e *Engine) resizePlayers() {
	colors := make([]Color, e.cfg.PlayerCount)
	for i := range colors {
		colors[i] = randomColor(e.rng)
	}
	players := make([]Player, e.cfg.PlayerCount)
	for i := range players {
		if i < len(e.players) {
			players[i] = e.players[i]
			players[i].Score = 0
			continue
		}
		players[i] = Player{ID: i, IsAI: e.aiSeats[i], Color: colors[i]}
	}
	e.players = players
}

// resetRound starts the next round of the current match.
func (e *Engine) resetRound(src Source) {
	e.stopTurnTimers()
	e.stopReset()
	e.token++

	e.claims.ResetAll()
	e.deadCells = board.DeadCells(e.rng, e.board, e.cfg.DeadCells)
	for _, cell := range e.deadCells {
		e.claims.MarkDead(cell)
	}
	e.active = e.set.All()
	e.claimed = nil
	for i := range e.players {
		e.players[i].Score = 0
	}
	e.turnCount = 0
	e.lastClaimed = -1
	// The player who finished the last round moves last in this one.
	e.currentTurn = e.nextPlayer(e.currentTurn)
	e.round++
	e.pristine = true

	e.emit(Event{Kind: EventRoundStarted, Source: src, Player: e.currentTurn})
	e.beginTurn(true)
}

// ResetGame starts a new round. It does nothing on a round where nothing
// has happened yet, so repeated calls are idempotent.
func (e *Engine) ResetGame() {
	if e.pristine {
		return
	}
	e.resetRound(SourceHuman)
}

func (e *Engine) nextPlayer(p int) int {
	return (p + 1) % len(e.players)
}

func (e *Engine) playableCells() int {
	return e.board.Cells() - len(e.deadCells)
}

// beginTurn puts the engine back in AwaitingMove for currentTurn and arms
// the turn timers. The first turn of a round never runs the AI inline, so
// all-AI play cannot recurse across rounds.
func (e *Engine) beginTurn(first bool) {
	e.stopTurnTimers()
	e.token++
	e.phase = PhaseAwaitingMove

	e.armCountdown()
	if !e.players[e.currentTurn].IsAI {
		return
	}
	if !first && e.cfg.AIDelay == 0 {
		e.playAI()
		return
	}
	e.armAI()
}

func (e *Engine) armCountdown() {
	if !e.cfg.Countdown.Enabled {
		return
	}
	tok := e.token
	d := time.Duration(e.cfg.Countdown.Seconds) * time.Second
	e.turnStops = append(e.turnStops, e.sched.AfterFunc(d, func() {
		if !e.current(tok) {
			return
		}
		e.logger.Debug("countdown expired", "player", e.currentTurn)
		e.pass(SourceTimer)
	}))
}

func (e *Engine) armAI() {
	tok := e.token
	e.turnStops = append(e.turnStops, e.sched.AfterFunc(e.cfg.AIDelay, func() {
		if !e.current(tok) || !e.players[e.currentTurn].IsAI {
			return
		}
		e.playAI()
	}))
}

// current reports whether a timer armed with tok may still act.
func (e *Engine) current(tok uint64) bool {
	return tok == e.token && e.phase == PhaseAwaitingMove
}

func (e *Engine) stopTurnTimers() {
	for _, stop := range e.turnStops {
		stop()
	}
	e.turnStops = e.turnStops[:0]
}

func (e *Engine) stopReset() {
	if e.resetStop != nil {
		e.resetStop()
		e.resetStop = nil
	}
}

func (e *Engine) playAI() {
	choice, ok := ai.Choose(e.aiInput())
	if !ok {
		e.logger.Warn("ai found no unclaimed cell", "player", e.currentTurn)
		return
	}
	e.logger.Debug("ai move", "player", e.currentTurn, "cell", choice.Cell, "rule", choice.Rule.String())
	e.submit(choice.Cell, e.currentTurn, SourceAI)
}

func (e *Engine) aiInput() ai.Input {
	return ai.Input{
		Combinations: e.active,
		Claims:       e.claims.Get,
		Cells:        e.board.Cells(),
		Current:      e.currentTurn,
		Previous:     (e.currentTurn + len(e.players) - 1) % len(e.players),
		LastClaimed:  e.lastClaimed,
		Preferences:  e.prefs,
	}
}
