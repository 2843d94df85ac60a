package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	MatchID  string
}

// HistoryMatch is one row of the match listing.
type HistoryMatch struct {
	ID        string    `json:"id"`
	Seed      uint64    `json:"seed"`
	Board     string    `json:"board"`
	Players   int       `json:"players"`
	AISeats   []int     `json:"ai_seats"`
	StartedAt time.Time `json:"started_at"`
	Rounds    int       `json:"rounds"`
}

// HistoryRound is one finished round of a match.
type HistoryRound struct {
	Number    int     `json:"number"`
	Outcome   string  `json:"outcome"`
	Winner    int     `json:"winner"`
	TurnCount int     `json:"turn_count"`
	Scores    []int   `json:"scores"`
	Lines     [][]int `json:"lines"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded matches",
		Long: `List the matches recorded by play --db or sim --db, or the rounds of
one match with --match.

Exit codes:
  0 - Success
  2 - Command error (database or match not found)

Examples:
  hypertoe history --db ./games.db
  hypertoe history --db ./games.db --match 0190f3c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.MatchID, "match", "", "show the rounds of one match")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.MatchID != "" {
		return showMatch(ctx, formatter, st, opts.MatchID)
	}

	summaries, err := st.ListMatches(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list matches", err)
	}
	matches := make([]HistoryMatch, len(summaries))
	for i, s := range summaries {
		matches[i] = historyMatch(s.MatchRecord, s.Rounds)
	}

	if formatter.JSON() {
		return formatter.Success(matches)
	}
	if len(matches) == 0 {
		fmt.Fprintln(formatter.Writer, "No matches recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCH\tSTARTED\tBOARD\tPLAYERS\tAI\tROUNDS\tSEED")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\t%d\t%d\n",
			m.ID, m.StartedAt.Local().Format(time.DateTime), m.Board, m.Players, m.AISeats, m.Rounds, m.Seed)
	}
	return tw.Flush()
}

func showMatch(ctx context.Context, f *OutputFormatter, st *store.Store, id string) error {
	rec, err := st.ReadMatch(ctx, id)
	if errors.Is(err, store.ErrMatchNotFound) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("match %s", id), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read match", err)
	}
	records, err := st.ReadRounds(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read rounds", err)
	}
	rounds := make([]HistoryRound, len(records))
	for i, r := range records {
		rounds[i] = HistoryRound{
			Number:    r.Number,
			Outcome:   r.Outcome,
			Winner:    r.Winner,
			TurnCount: r.TurnCount,
			Scores:    r.Scores,
			Lines:     r.Lines,
		}
	}

	if f.JSON() {
		return f.Success(struct {
			Match  HistoryMatch   `json:"match"`
			Rounds []HistoryRound `json:"rounds"`
		}{historyMatch(rec, len(rounds)), rounds})
	}

	m := historyMatch(rec, len(rounds))
	fmt.Fprintf(f.Writer, "match %s: %s, %d players, seed %d\n", m.ID, m.Board, m.Players, m.Seed)
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tRESULT\tTURNS\tSCORES")
	for _, r := range rounds {
		result := "draw"
		if r.Outcome == game.OutcomeWin.String() {
			result = fmt.Sprintf("%c wins", playerMark(r.Winner))
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%v\n", r.Number, result, r.TurnCount, r.Scores)
	}
	return tw.Flush()
}

func historyMatch(rec store.MatchRecord, rounds int) HistoryMatch {
	return HistoryMatch{
		ID:        rec.ID,
		Seed:      rec.Seed,
		Board:     boardLabel(rec.Config),
		Players:   rec.Config.PlayerCount,
		AISeats:   rec.AISeats,
		StartedAt: rec.StartedAt,
		Rounds:    rounds,
	}
}

// openExisting opens a database that must already exist; store.Open would
// create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
