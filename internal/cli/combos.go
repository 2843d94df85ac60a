package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hypertoe/internal/board"
	"github.com/roach88/hypertoe/internal/combo"
)

// CombosOptions holds flags for the combos command.
type CombosOptions struct {
	*RootOptions
	Dimension int
	Size      int
	WinLength int
	List      bool
}

// CombosResult holds the generated combinations.
type CombosResult struct {
	Board        string  `json:"board"`
	WinLength    int     `json:"win_length"`
	Count        int     `json:"count"`
	Combinations [][]int `json:"combinations,omitempty"`
}

// NewCombosCommand creates the combos command.
func NewCombosCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CombosOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "combos",
		Short: "Count the winning lines of a board",
		Long: `Generate every line of --win collinear cells on the board and print how
many there are. With --list, print each line's cells.

Examples:
  hypertoe combos
  hypertoe combos --dim 3 --size 4 --win 3
  hypertoe combos --size 5 --list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCombos(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Dimension, "dim", "d", 2, "board dimension (2 or 3)")
	cmd.Flags().IntVarP(&opts.Size, "size", "n", 3, "cells per side")
	cmd.Flags().IntVarP(&opts.WinLength, "win", "w", 0, "line length (default: the board size)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "print every combination")

	return cmd
}

func runCombos(opts *CombosOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	b, err := board.New(opts.Dimension, opts.Size)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid board", err)
	}
	win := opts.WinLength
	if win == 0 {
		win = opts.Size
	}
	set, err := combo.Generate(b, win)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid win length", err)
	}
	formatter.VerboseLog("closed form for %s, win %d: %d", b, win, combo.Count(opts.Dimension, opts.Size, win))

	res := CombosResult{Board: b.String(), WinLength: win, Count: set.Len()}
	if opts.List {
		res.Combinations = make([][]int, set.Len())
		for i := range set.Len() {
			res.Combinations[i] = []int(set.At(i))
		}
	}

	if formatter.JSON() {
		return formatter.Success(res)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "%s, %d in a row: %d combinations\n", res.Board, res.WinLength, res.Count)
	for _, c := range res.Combinations {
		fmt.Fprintf(w, "  %v\n", c)
	}
	return nil
}
