package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/hypertoe/internal/config"
	"github.com/roach88/hypertoe/internal/engine"
	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	AI       []int
	Database string
	Seed     uint64
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a local game in the terminal",
		Long: `Play on this terminal. Human seats take turns at the keyboard; seats
given to --ai are played by the computer.

Type help during the game for the list of commands.

Examples:
  hypertoe play
  hypertoe play --ai 1
  hypertoe play --config ./cube.cue --db ./games.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().IntSliceVar(&opts.AI, "ai", nil, "seats played by the computer, e.g. --ai 1,2")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record matches to this SQLite database")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "match seed (0 = random)")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	settings, err := opts.loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("ai") {
		settings.AIPlayers = opts.AI
	}
	if opts.Database != "" {
		settings.Database = opts.Database
	}
	logger := opts.newLogger(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess := newSession(cmd.OutOrStdout(), anySeat)
	gameOpts := gameOptions(settings, opts.Seed, logger, sess)

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
	sess.loop = loop

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(ctx) }()

	inputErr := sess.readInput(ctx, cmd.InOrStdin())
	loop.Stop()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "loop error", err)
	}
	if inputErr != nil && !errors.Is(inputErr, context.Canceled) && !engine.IsStopped(inputErr) {
		return WrapExitError(ExitFailure, "input error", inputErr)
	}
	if rec != nil {
		if err := rec.Err(); err != nil {
			return WrapExitError(ExitFailure, "recording failed", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded %d match(es) to %s\n", len(rec.Matches()), settings.Database)
	}
	return nil
}

// gameOptions builds the engine options shared by play and join.
func gameOptions(s config.Settings, seed uint64, logger *slog.Logger, listeners ...game.Listener) []game.Option {
	opts := []game.Option{
		game.WithConfig(s.Game),
		game.WithAIPlayers(s.AIPlayers...),
		game.WithResetDelay(s.ResetDelay),
		game.WithLogger(logger),
	}
	if seed != 0 {
		opts = append(opts, game.WithSeeds(game.FixedSeeds(seed)))
	}
	for _, l := range listeners {
		opts = append(opts, game.WithListener(l))
	}
	return opts
}

func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}
