package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/hypertoe/internal/engine"
	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/store"
)

// SimOptions holds flags for the sim command.
type SimOptions struct {
	*RootOptions
	Rounds   int
	Database string
	Seed     uint64
}

// SimRound is one finished round.
type SimRound struct {
	Round   int    `json:"round"`
	Outcome string `json:"outcome"`
	Winner  int    `json:"winner"`
	Turns   int    `json:"turns"`
	Scores  []int  `json:"scores"`
}

// SimResult summarizes a simulation.
type SimResult struct {
	Board  string     `json:"board"`
	Seed   uint64     `json:"seed"`
	Rounds []SimRound `json:"rounds"`
	Wins   []int      `json:"wins"`
	Draws  int        `json:"draws"`
}

// NewSimCommand creates the sim command.
func NewSimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run computer-only rounds",
		Long: `Let the computer play every seat, without delays, for a number of
rounds, and report the results. A fixed --seed reproduces the same rounds.

Examples:
  hypertoe sim --rounds 100
  hypertoe sim --config ./cube.cue --seed 42 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Rounds, "rounds", 10, "number of rounds to play")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the match to this SQLite database")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "match seed (0 = random)")

	return cmd
}

// simTally collects round results on the loop goroutine and stops the loop
// once enough rounds are done.
type simTally struct {
	loop   *engine.Loop
	want   int
	seed   uint64
	scores []int
	rounds []SimRound
}

func (t *simTally) OnEvent(ev game.Event) {
	switch ev.Kind {
	case game.EventMatchStarted:
		t.seed = ev.Seed
		t.scores = make([]int, len(ev.Players))
	case game.EventRoundStarted:
		clear(t.scores)
	case game.EventScored:
		t.scores[ev.Player] = ev.Score
	case game.EventRoundOver:
		if len(t.rounds) >= t.want {
			return
		}
		t.rounds = append(t.rounds, SimRound{
			Round:   ev.Round,
			Outcome: ev.Outcome.Kind.String(),
			Winner:  ev.Outcome.Winner,
			Turns:   ev.TurnCount,
			Scores:  slices.Clone(t.scores),
		})
		if len(t.rounds) == t.want {
			t.loop.Stop()
		}
	}
}

func runSim(opts *SimOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Rounds <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--rounds must be positive, got %d", opts.Rounds))
	}

	settings, err := opts.loadSettings()
	if err != nil {
		return err
	}
	if opts.Database != "" {
		settings.Database = opts.Database
	}
	logger := opts.newLogger(cmd.ErrOrStderr())

	settings.Game.AIDelay = 0
	settings.AIPlayers = make([]int, settings.Game.PlayerCount)
	for i := range settings.AIPlayers {
		settings.AIPlayers[i] = i
	}
	settings.ResetDelay = 0

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tally := &simTally{want: opts.Rounds}
	gameOpts := gameOptions(settings, opts.Seed, logger, tally)

	var rec *store.Recorder
	if settings.Database != "" {
		st, err := store.Open(settings.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer closeStore(st, logger)
		rec = store.NewRecorder(ctx, st, engine.UUIDv7Generator{}, store.WithRecorderLogger(logger))
		gameOpts = append(gameOpts, game.WithListener(rec))
	}

	loop := engine.New(gameOpts, engine.WithLogger(logger))
	tally.loop = loop

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "loop error", err)
	}
	if rec != nil && rec.Err() != nil {
		return WrapExitError(ExitFailure, "recording failed", rec.Err())
	}

	return outputSim(formatter, summarize(tally.rounds, settings.Game, tally.seed))
}

func summarize(rounds []SimRound, cfg game.Config, seed uint64) SimResult {
	res := SimResult{
		Board:  boardLabel(cfg),
		Seed:   seed,
		Rounds: rounds,
		Wins:   make([]int, cfg.PlayerCount),
	}
	for _, r := range rounds {
		if r.Outcome == game.OutcomeWin.String() && r.Winner >= 0 && r.Winner < len(res.Wins) {
			res.Wins[r.Winner]++
		} else {
			res.Draws++
		}
	}
	return res
}

func boardLabel(cfg game.Config) string {
	dims := make([]string, cfg.Dimension)
	for i := range dims {
		dims[i] = fmt.Sprint(cfg.BoardSize)
	}
	return fmt.Sprintf("%s, %d in a row", strings.Join(dims, "x"), cfg.WinLength)
}

func outputSim(f *OutputFormatter, res SimResult) error {
	if f.JSON() {
		return f.Success(res)
	}

	w := f.Writer
	for _, r := range res.Rounds {
		result := "draw"
		if r.Outcome == game.OutcomeWin.String() {
			result = fmt.Sprintf("%c wins", playerMark(r.Winner))
		}
		fmt.Fprintf(w, "round %3d: %-8s after %3d turns  scores %v\n", r.Round, result, r.Turns, r.Scores)
	}
	fmt.Fprintf(w, "\n%s board, seed %d, %d rounds\n", res.Board, res.Seed, len(res.Rounds))
	for p, n := range res.Wins {
		fmt.Fprintf(w, "  %c: %d wins\n", playerMark(p), n)
	}
	fmt.Fprintf(w, "  draws: %d\n", res.Draws)
	return nil
}
