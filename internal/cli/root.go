package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/hypertoe/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // CUE settings file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hypertoe CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hypertoe",
		Short: "hypertoe - n-dimensional tic-tac-toe",
		Long: `Tic-tac-toe on 2D and 3D boards of any size, for up to ten players,
human or computer, on one terminal or across a websocket relay.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "CUE settings file")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewSimCommand(opts))
	cmd.AddCommand(NewCombosCommand(opts))
	cmd.AddCommand(NewRelayCommand(opts))
	cmd.AddCommand(NewJoinCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadSettings resolves settings in order: defaults, --config file,
// HYPERTOE_* environment. Command flags are applied by the caller.
func (o *RootOptions) loadSettings() (config.Settings, error) {
	s := config.Default()
	if o.Config != "" {
		loaded, err := config.Load(o.Config)
		if err != nil {
			return s, WrapExitError(ExitCommandError, "failed to load settings", err)
		}
		s = loaded
	}
	s, err := config.ApplyEnv(s)
	if err != nil {
		return s, WrapExitError(ExitCommandError, "failed to read environment", err)
	}
	if errs := config.Validate(s); len(errs) > 0 {
		return s, WrapExitError(ExitCommandError, "invalid settings", errs[0])
	}
	return s, nil
}

// newLogger writes text logs to w: Info by default, Debug with --verbose.
func (o *RootOptions) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
