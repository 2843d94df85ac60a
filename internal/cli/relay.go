package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hypertoe/internal/netsync"
)

const shutdownTimeout = 5 * time.Second

// RelayOptions holds flags for the relay command.
type RelayOptions struct {
	*RootOptions
	Addr string
	Path string
}

// NewRelayCommand creates the relay command.
func NewRelayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RelayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the websocket relay for networked games",
		Long: `Run a websocket hub. Peers that join the same room receive each
other's messages; the relay itself keeps no game state.

Examples:
  hypertoe relay
  hypertoe relay --addr :9000 --path /hypertoe`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Path, "path", "/ws", "websocket path")

	return cmd
}

func runRelay(opts *RelayOptions, cmd *cobra.Command) error {
	logger := opts.newLogger(cmd.ErrOrStderr())

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "relay listening on ws://%s%s\n", ln.Addr(), opts.Path)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serveRelay(ctx, ln, opts.Path, netsync.NewRelay(logger), logger); err != nil {
		return WrapExitError(ExitFailure, "relay error", err)
	}
	return nil
}

// serveRelay serves hub at path on ln until ctx is done, then disconnects
// every peer and shuts the server down.
func serveRelay(ctx context.Context, ln net.Listener, path string, hub *netsync.Relay, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, hub)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("relay shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
