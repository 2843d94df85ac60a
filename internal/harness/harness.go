package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/hypertoe/internal/claim"
	"github.com/roach88/hypertoe/internal/config"
	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/testutil"
)

// Harness drives one engine through a scenario on a manual clock.
type Harness struct {
	engine *game.Engine
	sched  *testutil.ManualScheduler
	result *Result
	logger *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger for the harness and the engine.
// Default: logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// The engine gets a manual scheduler and fixed seeds, so a run is fully
// deterministic. Expect clauses and assertions that fail are recorded in
// the result; an error means the scenario itself could not be run.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		sched:  testutil.NewManualScheduler(),
		result: NewResult(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	settings := config.Default()
	if scenario.Settings != "" {
		loaded, err := config.Load(scenario.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		settings = loaded
	}

	cfg, err := patchConfig(settings.Game, scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	aiPlayers := settings.AIPlayers
	if scenario.AIPlayers != nil {
		aiPlayers = scenario.AIPlayers
	}
	resetDelay := settings.ResetDelay
	if scenario.ResetDelay != "" {
		resetDelay, _ = time.ParseDuration(scenario.ResetDelay)
	}
	seeds := scenario.Seeds
	if len(seeds) == 0 {
		seeds = []uint64{1}
	}

	h.engine = game.New(
		game.WithConfig(cfg),
		game.WithScheduler(h.sched),
		game.WithSeeds(game.FixedSeeds(seeds...)),
		game.WithAIPlayers(aiPlayers...),
		game.WithResetDelay(resetDelay),
		game.WithListener(h.result),
		game.WithLogger(h.logger),
	)

	if err := h.executeFlow(scenario.Flow); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	h.result.Final = finalState(h.engine)
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", h.result.Pass,
		"events", len(h.result.Trace),
	)
	return h.result, nil
}

// executeFlow runs all flow steps and checks their expect clauses.
func (h *Harness) executeFlow(flow []Step) error {
	for i, step := range flow {
		if err := h.executeStep(i, step); err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
	}
	return nil
}

func (h *Harness) executeStep(i int, step Step) error {
	e := h.engine
	check := &stepCheck{index: i, step: step.Do, result: h.result}

	switch step.Do {
	case StepMove:
		res := e.SubmitMove(step.Cell, step.Player)
		check.accepted(res.Accepted)
		check.reason(res.Reason)
		if res.Accepted {
			check.outcome(res.Outcome)
		}
		h.logger.Debug("flow step", "step", i, "do", step.Do,
			"cell", step.Cell, "player", step.Player,
			"accepted", res.Accepted, "reason", res.Reason.String())

	case StepPass:
		out, ok := e.ForcePass()
		check.accepted(ok)
		if ok {
			check.outcome(out)
		}

	case StepReset:
		e.ResetGame()

	case StepFire:
		fired := 0
		if h.sched.FireNext() {
			fired = 1
		}
		check.fired(fired)

	case StepAdvance:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return err
		}
		check.fired(h.sched.Advance(d))

	case StepSet:
		changed, err := applyPatch(e, step.Config)
		if err != nil {
			return err
		}
		check.changed(changed)

	case StepAI:
		check.changed(e.SetPlayerAI(step.Player, step.Enabled))

	default:
		return fmt.Errorf("unknown step %q", step.Do)
	}

	check.expect = step.Expect
	check.flush()
	return nil
}

// stepCheck collects what a step produced and compares it with the step's
// expect clause.
type stepCheck struct {
	index  int
	step   string
	result *Result
	expect *Expect
	got    struct {
		accepted *bool
		reason   *game.RejectReason
		outcome  *game.Outcome
		fired    *int
		changed  *bool
	}
}

func (c *stepCheck) accepted(v bool)            { c.got.accepted = &v }
func (c *stepCheck) reason(v game.RejectReason) { c.got.reason = &v }
func (c *stepCheck) outcome(v game.Outcome)     { c.got.outcome = &v }
func (c *stepCheck) fired(v int)                { c.got.fired = &v }
func (c *stepCheck) changed(v bool)             { c.got.changed = &v }
func (c *stepCheck) fail(format string, a ...any) {
	c.result.AddError(fmt.Sprintf("flow[%d] %s: ", c.index, c.step) + fmt.Sprintf(format, a...))
}

func (c *stepCheck) flush() {
	x := c.expect
	if x == nil {
		return
	}
	if x.Accepted != nil {
		if c.got.accepted == nil {
			c.fail("accepted does not apply")
		} else if *c.got.accepted != *x.Accepted {
			c.fail("expected accepted=%t, got %t", *x.Accepted, *c.got.accepted)
		}
	}
	if x.Reason != "" {
		switch {
		case c.got.reason == nil:
			c.fail("reason does not apply")
		case c.got.reason.String() != x.Reason:
			c.fail("expected reason %q, got %q", x.Reason, c.got.reason.String())
		}
	}
	if x.Outcome != "" || x.Winner != nil {
		out := c.got.outcome
		switch {
		case out == nil:
			c.fail("no outcome: the step was not applied")
		case x.Outcome != "" && out.Kind.String() != x.Outcome:
			c.fail("expected outcome %q, got %q", x.Outcome, out.Kind.String())
		case x.Winner != nil && out.Winner != *x.Winner:
			c.fail("expected winner %d, got %d", *x.Winner, out.Winner)
		}
	}
	if x.Fired != nil {
		if c.got.fired == nil {
			c.fail("fired does not apply")
		} else if *c.got.fired != *x.Fired {
			c.fail("expected %d timers fired, got %d", *x.Fired, *c.got.fired)
		}
	}
	if x.Changed != nil {
		if c.got.changed == nil {
			c.fail("changed does not apply")
		} else if *c.got.changed != *x.Changed {
			c.fail("expected changed=%t, got %t", *x.Changed, *c.got.changed)
		}
	}
}

// patchConfig applies p to cfg before the engine exists.
func patchConfig(cfg game.Config, p *ConfigPatch) (game.Config, error) {
	if p == nil {
		return cfg, nil
	}
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.PlayerCount, p.Players)
	set(&cfg.Dimension, p.Dimension)
	if p.BoardSize != nil {
		cfg.BoardSize = *p.BoardSize
		// Win length follows the board size unless given.
		cfg.WinLength = *p.BoardSize
	}
	set(&cfg.WinLength, p.WinLength)
	set(&cfg.DeadCells, p.DeadCells)
	set(&cfg.Score.Goal, p.GoalScore)
	if p.ScoreMode != nil {
		mode, err := game.ParseScoreMode(*p.ScoreMode)
		if err != nil {
			return cfg, err
		}
		cfg.Score.Mode = mode
	}
	if p.AIDelay != nil {
		cfg.AIDelay, _ = time.ParseDuration(*p.AIDelay)
	}
	if p.Countdown != nil {
		cfg.Countdown.Enabled = *p.Countdown > 0
		if *p.Countdown > 0 {
			cfg.Countdown.Seconds = *p.Countdown
		}
	}
	if p.BlindMode != nil {
		mode, err := game.ParseBlindMode(*p.BlindMode)
		if err != nil {
			return cfg, err
		}
		cfg.Blind.Mode = mode
	}
	if p.BlindInterval != nil {
		cfg.Blind.Interval, _ = time.ParseDuration(*p.BlindInterval)
	}
	if p.BlindReveal != nil {
		cfg.Blind.Reveal, _ = time.ParseDuration(*p.BlindReveal)
	}
	return cfg, nil
}

// applyPatch changes a running engine through its setters, in the order a
// player would click through the settings panel. It reports whether any
// setter changed something.
func applyPatch(e *game.Engine, p *ConfigPatch) (bool, error) {
	if p == nil {
		return false, nil
	}
	changed := false
	apply := func(v *int, setter func(int) bool) {
		if v != nil && setter(*v) {
			changed = true
		}
	}
	apply(p.Players, e.SetPlayerCount)
	apply(p.Dimension, e.SetDimension)
	apply(p.BoardSize, e.SetBoardSize)
	apply(p.WinLength, e.SetWinLength)
	apply(p.DeadCells, e.SetDeadCellCount)

	if p.ScoreMode != nil {
		mode, err := game.ParseScoreMode(*p.ScoreMode)
		if err != nil {
			return changed, err
		}
		changed = e.SetScoreMode(mode) || changed
	}
	apply(p.GoalScore, e.SetGoalScore)

	if p.AIDelay != nil {
		d, _ := time.ParseDuration(*p.AIDelay)
		changed = e.SetAIDelay(d) || changed
	}
	if p.Countdown != nil {
		secs := *p.Countdown
		if secs <= 0 {
			secs = e.Config().Countdown.Seconds
		}
		changed = e.SetCountdown(*p.Countdown > 0, secs) || changed
	}
	if p.BlindMode != nil || p.BlindInterval != nil || p.BlindReveal != nil {
		blind := e.Config().Blind
		if p.BlindMode != nil {
			mode, err := game.ParseBlindMode(*p.BlindMode)
			if err != nil {
				return changed, err
			}
			blind.Mode = mode
		}
		if p.BlindInterval != nil {
			blind.Interval, _ = time.ParseDuration(*p.BlindInterval)
		}
		if p.BlindReveal != nil {
			blind.Reveal, _ = time.ParseDuration(*p.BlindReveal)
		}
		changed = e.SetBlindMode(blind.Mode, blind.Interval, blind.Reveal) || changed
	}
	return changed, nil
}

func finalState(e *game.Engine) FinalState {
	round := e.Round()
	var board strings.Builder
	for i := range e.Board().Cells() {
		board.WriteString(cellChar(e.CellState(i)))
	}
	claimed := make([][]int, len(round.Claimed))
	for i, c := range round.Claimed {
		claimed[i] = []int(c)
	}
	dead := round.DeadCells
	if dead == nil {
		dead = []int{}
	}
	return FinalState{
		Phase:       e.Phase().String(),
		Round:       round.Number,
		CurrentTurn: round.CurrentTurn,
		TurnCount:   round.TurnCount,
		Scores:      e.Scores(),
		Board:       board.String(),
		DeadCells:   dead,
		Claimed:     claimed,
	}
}

func cellChar(st claim.State) string {
	switch st.Kind {
	case claim.Dead:
		return "#"
	case claim.Claimed:
		return strconv.Itoa(st.Player)
	default:
		return "."
	}
}
