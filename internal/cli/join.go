package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/hypertoe/internal/engine"
	"github.com/roach88/hypertoe/internal/netsync"
)

// JoinOptions holds flags for the join command.
type JoinOptions struct {
	*RootOptions
	URL      string
	Room     string
	Seat     int
	Announce bool
	Seed     uint64
}

// NewJoinCommand creates the join command.
func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JoinOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Play a networked game through a relay",
		Long: `Connect to a relay and play from one seat. Moves and setting changes
are shared with every peer in the room.

The peer that hosts the room should pass --announce so that players who
join later receive its settings.

Examples:
  hypertoe join --announce
  hypertoe join --url ws://example.com:8080/ws --room friday --seat 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "", "relay websocket URL (default from settings)")
	cmd.Flags().StringVar(&opts.Room, "room", "", "room name (default from settings)")
	cmd.Flags().IntVar(&opts.Seat, "seat", 0, "seat played from this terminal")
	cmd.Flags().BoolVar(&opts.Announce, "announce", false, "send local settings to the room on connect")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "match seed (0 = random)")

	return cmd
}

func runJoin(opts *JoinOptions, cmd *cobra.Command) error {
	settings, err := opts.loadSettings()
	if err != nil {
		return err
	}
	if opts.URL != "" {
		settings.RelayURL = opts.URL
	}
	if opts.Room != "" {
		settings.Room = opts.Room
	}
	if opts.Seat < 0 || opts.Seat >= settings.Game.PlayerCount {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("--seat must be between 0 and %d, got %d", settings.Game.PlayerCount-1, opts.Seat))
	}
	logger := opts.newLogger(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := netsync.Dial(ctx, settings.RelayURL, settings.Room)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to relay", err)
	}
	defer transport.Close()

	origin := engine.UUIDv7Generator{}.Generate()
	gwOpts := []netsync.GatewayOption{netsync.WithGatewayLogger(logger)}
	if opts.Announce {
		gwOpts = append(gwOpts, netsync.WithAnnounce())
	}
	gw := netsync.NewGateway(transport, origin, settings.Room, gwOpts...)

	sess := newSession(cmd.OutOrStdout(), opts.Seat)
	sess.networked = true
	loop := engine.New(gameOptions(settings, opts.Seed, logger, sess, gw), engine.WithLogger(logger))
	sess.loop = loop
	fmt.Fprintf(cmd.OutOrStdout(), "joined room %q at %s as %c\n", settings.Room, settings.RelayURL, playerMark(opts.Seat))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(ctx) }()
	gwErr := make(chan error, 1)
	go func() {
		err := gw.Run(ctx, loop)
		if ctx.Err() != nil {
			// Closing the transport on the way out ends Run with a read error.
			err = nil
		}
		if err != nil {
			logger.Error("relay connection lost", "error", err)
		}
		gwErr <- err
	}()

	inputErr := sess.readInput(ctx, cmd.InOrStdin())
	cancel()
	_ = transport.Close()
	loop.Stop()

	if err := <-gwErr; err != nil {
		return WrapExitError(ExitFailure, "relay connection lost", err)
	}
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "loop error", err)
	}
	if inputErr != nil && !errors.Is(inputErr, context.Canceled) && !engine.IsStopped(inputErr) {
		return WrapExitError(ExitFailure, "input error", inputErr)
	}
	return nil
}
