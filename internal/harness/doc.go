// Package harness runs YAML game scenarios against the real engine.
//
// A scenario fixes the settings, the match seeds and the AI seats, then
// drives the engine step by step: moves, passes, resets, setting changes
// and timer firings on a manual scheduler. Nothing depends on wall time,
// so a scenario always produces the same event trace.
//
// Each step may carry an expect clause; assertions check the final board,
// scores and the trace. The trace plus the final state can be compared
// against a golden file (testdata/golden/<name>.golden).
//
// Example:
//
//	name: column-win
//	description: player 0 takes the first column
//	config:
//	  board_size: 3
//	reset_delay: 1s
//	flow:
//	  - do: move
//	    cell: 0
//	  - do: move
//	    cell: 1
//	    player: 1
//	assertions:
//	  - type: phase
//	    phase: awaiting_move
package harness
