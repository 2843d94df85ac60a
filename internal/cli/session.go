package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/hypertoe/internal/board"
	"github.com/roach88/hypertoe/internal/engine"
	"github.com/roach88/hypertoe/internal/game"
)

// anySeat lets the terminal move for every human seat (hot seat).
const anySeat = -1

const sessionHelp = `commands:
  <cell>             claim a cell: index (4) or coordinates (1,1 or 1,1,2)
  pass               end your turn without a claim
  reset              start the next round
  ai <seat> on|off   hand a seat to the computer or take it back
                     (pass, reset and ai are local games only)
  set <name> <value> size, win, dim, players, dead, goal, mode, countdown, blind, aidelay
  show               print the board
  quit               leave`

// localOnly commands change state that no sync message carries.
var localOnly = map[string]bool{"pass": true, "reset": true, "ai": true}

// session connects a terminal to a running loop. Everything it prints is
// printed on the loop goroutine, from listener callbacks and tasks.
type session struct {
	loop  *engine.Loop
	out   io.Writer
	seat  int
	board board.Board

	// networked sessions only offer commands peers can follow: claims and
	// scene settings.
	networked bool

	renderQueued bool
}

func newSession(out io.Writer, seat int) *session {
	return &session{out: out, seat: seat}
}

// OnEvent narrates ev and queues a redraw when the position changed.
func (s *session) OnEvent(ev game.Event) {
	switch ev.Kind {
	case game.EventMatchStarted:
		c := ev.Config
		s.board = board.MustNew(c.Dimension, c.BoardSize)
		fmt.Fprintf(s.out, "new match: %s board, %d in a row, %d players\n", s.board, c.WinLength, c.PlayerCount)
	case game.EventMoveApplied:
		who := ""
		if ev.Source == game.SourceAI {
			who = " (ai)"
		}
		fmt.Fprintf(s.out, "%c%s claims %d [%s]\n", playerMark(ev.Player), who, ev.Cell, formatCoords(s.board, ev.Cell))
	case game.EventTurnPassed:
		why := ""
		if ev.Source == game.SourceTimer {
			why = ": time is up"
		}
		fmt.Fprintf(s.out, "%c passes%s\n", playerMark(ev.Player), why)
	case game.EventScored:
		fmt.Fprintf(s.out, "%c completes a line %v (%d)\n", playerMark(ev.Player), []int(ev.Combination), ev.Score)
	case game.EventRoundOver:
		if ev.Outcome.Kind == game.OutcomeWin {
			fmt.Fprintf(s.out, "round %d: %c wins\n", ev.Round, playerMark(ev.Outcome.Winner))
		} else {
			fmt.Fprintf(s.out, "round %d: draw\n", ev.Round)
		}
	case game.EventRoundStarted:
		fmt.Fprintf(s.out, "round %d begins\n", ev.Round)
	case game.EventBlindChanged:
		if ev.Hidden {
			fmt.Fprintln(s.out, "claims hidden")
		} else {
			fmt.Fprintln(s.out, "claims revealed")
		}
	case game.EventConfigChanged:
		c := ev.Config
		countdown := "off"
		if c.Countdown.Enabled {
			countdown = fmt.Sprintf("%ds", c.Countdown.Seconds)
		}
		fmt.Fprintf(s.out, "settings: score %s to %d, countdown %s, blind %s, ai delay %s\n",
			c.Score.Mode, c.Score.Goal, countdown, c.Blind.Mode, c.AIDelay)
		return
	case game.EventPlayerChanged:
		role := "human"
		if ev.Seat.IsAI {
			role = "ai"
		}
		fmt.Fprintf(s.out, "%c is now %s\n", playerMark(ev.Player), role)
	default:
		return
	}
	s.queueRender()
}

func (s *session) queueRender() {
	if s.loop == nil || s.renderQueued {
		return
	}
	s.renderQueued = s.loop.Enqueue("render", s.render)
}

func (s *session) render(g *game.Engine) {
	s.renderQueued = false
	renderBoard(s.out, g)
	renderStatus(s.out, g)
	s.prompt(g)
}

func (s *session) prompt(g *game.Engine) {
	if g.Phase() != game.PhaseAwaitingMove {
		return
	}
	turn := g.Round().CurrentTurn
	switch {
	case g.Players()[turn].IsAI:
		fmt.Fprintf(s.out, "%c is thinking\n", playerMark(turn))
	case s.seat == anySeat || s.seat == turn:
		fmt.Fprintf(s.out, "%c to move> \n", playerMark(turn))
	default:
		fmt.Fprintf(s.out, "waiting for %c\n", playerMark(turn))
	}
}

// readInput feeds lines from in to the loop until quit or EOF.
func (s *session) readInput(ctx context.Context, in io.Reader) error {
	if err := s.loop.Do(ctx, "render", s.render); err != nil {
		return err
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		quit := false
		if err := s.loop.Do(ctx, "input", func(g *game.Engine) { quit = s.handle(g, line) }); err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// handle runs one command line. It reports whether the user quit.
func (s *session) handle(g *game.Engine, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	if s.networked && localOnly[fields[0]] {
		fmt.Fprintf(s.out, "%s is not available in a networked game\n", fields[0])
		return false
	}

	switch fields[0] {
	case "quit", "q", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(s.out, sessionHelp)
	case "show":
		s.render(g)
	case "pass":
		if !s.mayMove(g) {
			return false
		}
		g.ForcePass()
	case "reset":
		g.ResetGame()
	case "ai":
		s.setAI(g, fields[1:])
	case "set":
		s.set(g, fields[1:])
	default:
		cell, err := parseCell(g.Board(), fields[0])
		if err != nil {
			fmt.Fprintf(s.out, "%v (type help)\n", err)
			return false
		}
		if !s.mayMove(g) {
			return false
		}
		res := g.SubmitMove(cell, g.Round().CurrentTurn)
		if !res.Accepted {
			fmt.Fprintf(s.out, "rejected: %s\n", res.Reason)
		}
	}
	return false
}

// mayMove reports whether this terminal may act for the current seat.
func (s *session) mayMove(g *game.Engine) bool {
	if g.Phase() != game.PhaseAwaitingMove {
		fmt.Fprintln(s.out, "rejected: busy")
		return false
	}
	turn := g.Round().CurrentTurn
	if g.Players()[turn].IsAI {
		fmt.Fprintf(s.out, "rejected: %c is played by the computer\n", playerMark(turn))
		return false
	}
	if s.seat != anySeat && s.seat != turn {
		fmt.Fprintf(s.out, "rejected: not your turn, you are %c\n", playerMark(s.seat))
		return false
	}
	return true
}

func (s *session) setAI(g *game.Engine, args []string) {
	if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
		fmt.Fprintln(s.out, "usage: ai <seat> on|off")
		return
	}
	seat, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "not a seat: %q\n", args[0])
		return
	}
	if !g.SetPlayerAI(seat, args[1] == "on") {
		fmt.Fprintln(s.out, "unchanged")
	}
}

// set changes one setting through the engine's setters.
func (s *session) set(g *game.Engine, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "usage: set <name> <value>")
		return
	}
	name, value := args[0], args[1]
	cfg := g.Config()

	intSetters := map[string]func(int) bool{
		"size":    g.SetBoardSize,
		"win":     g.SetWinLength,
		"dim":     g.SetDimension,
		"players": g.SetPlayerCount,
		"dead":    g.SetDeadCellCount,
		"goal":    g.SetGoalScore,
	}

	var changed bool
	switch {
	case intSetters[name] != nil:
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintf(s.out, "not a number: %q\n", value)
			return
		}
		changed = intSetters[name](n)
	case name == "mode":
		mode, err := game.ParseScoreMode(value)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return
		}
		changed = g.SetScoreMode(mode)
	case name == "countdown":
		if value == "off" {
			changed = g.SetCountdown(false, cfg.Countdown.Seconds)
			break
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintf(s.out, "not a number: %q\n", value)
			return
		}
		changed = g.SetCountdown(true, n)
	case name == "blind":
		if value == "off" {
			value = string(game.BlindDisabled)
		}
		mode, err := game.ParseBlindMode(value)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return
		}
		changed = g.SetBlindMode(mode, cfg.Blind.Interval, cfg.Blind.Reveal)
	case name == "aidelay":
		d, err := time.ParseDuration(value)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return
		}
		changed = g.SetAIDelay(d)
	default:
		fmt.Fprintf(s.out, "unknown setting %q\n", name)
		return
	}

	if !changed {
		fmt.Fprintln(s.out, "unchanged")
	}
}
