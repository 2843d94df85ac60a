package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hypertoe/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	MatchID  string // optional - specific match only
}

// ReplayMatchResult holds the replay result for a single match.
type ReplayMatchResult struct {
	MatchID       string   `json:"match_id"`
	Rounds        int      `json:"rounds"`
	Deterministic bool     `json:"deterministic"`
	Mismatches    []string `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Matches          []ReplayMatchResult `json:"matches"`
	TotalMatches     int                 `json:"total_matches"`
	AllDeterministic bool                `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded matches and verify determinism",
		Long: `Rebuild each recorded match from its seed and settings, feed it the
logged moves, and check that every round ends exactly as recorded.

Exit codes:
  0 - All matches replay identically
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  hypertoe replay --db ./games.db
  hypertoe replay --db ./games.db --match 0190f3c2-...
  hypertoe replay --db ./games.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.MatchID, "match", "", "replay specific match only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ids, err := matchIDs(ctx, st, opts.MatchID)
	if err != nil {
		return err
	}

	result := ReplayResult{
		Matches:          make([]ReplayMatchResult, 0, len(ids)),
		TotalMatches:     len(ids),
		AllDeterministic: true,
	}
	for _, id := range ids {
		formatter.VerboseLog("replaying %s", id)
		res, err := st.Replay(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay match %s", id), err)
		}
		mr := ReplayMatchResult{
			MatchID:       id,
			Rounds:        len(res.Recorded),
			Deterministic: res.OK(),
		}
		for _, m := range res.Mismatches {
			mr.Mismatches = append(mr.Mismatches, m.String())
		}
		result.Matches = append(result.Matches, mr)
		if !mr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

func matchIDs(ctx context.Context, st *store.Store, only string) ([]string, error) {
	if only != "" {
		if _, err := st.ReadMatch(ctx, only); err != nil {
			if errors.Is(err, store.ErrMatchNotFound) {
				return nil, WrapExitError(ExitCommandError, fmt.Sprintf("match %s", only), err)
			}
			return nil, WrapExitError(ExitCommandError, "failed to read match", err)
		}
		return []string{only}, nil
	}
	matches, err := st.ListMatches(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to list matches", err)
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(f *OutputFormatter, result ReplayResult) error {
	if result.AllDeterministic {
		return f.Success(result)
	}
	if err := f.Failure(ErrCodeMismatch, "determinism verification failed", result); err != nil {
		return err
	}
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}

// outputReplayText outputs the replay result as text.
func outputReplayText(f *OutputFormatter, result ReplayResult) error {
	w := f.Writer

	if result.TotalMatches == 0 {
		fmt.Fprintln(w, "No matches found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d match(es)\n", result.TotalMatches)
	fmt.Fprintln(w)

	for _, m := range result.Matches {
		status := "✓"
		if !m.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Match: %s\n", status, m.MatchID)
		fmt.Fprintf(w, "  Rounds: %d\n", m.Rounds)
		for _, mm := range m.Mismatches {
			fmt.Fprintf(w, "  %s\n", mm)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All matches replay identically")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
