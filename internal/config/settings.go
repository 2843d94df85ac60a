package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/hypertoe/internal/game"
)

//go:embed schema.cue
var schemaCUE string

// Settings is everything a settings file can set.
type Settings struct {
	Game       game.Config
	AIPlayers  []int
	ResetDelay time.Duration
	Database   string
	RelayURL   string
	Room       string
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Game:       game.DefaultConfig(),
		ResetDelay: game.DefaultResetDelay,
		RelayURL:   "ws://localhost:8080/ws",
		Room:       "lobby",
	}
}

// CompileError is a settings error with its position in the source file.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// Load reads a settings file on top of the defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return CompileBytes(filepath.Base(path), data)
}

// CompileBytes parses CUE source, checks it against #Settings and applies
// it on top of the defaults. Cross-field rules are checked by Validate.
func CompileBytes(filename string, data []byte) (Settings, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Settings{}, formatCUEError(err)
	}

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Settings{}, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Settings")).Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Settings{}, formatCUEError(err)
	}

	// The unified value carries defaults for optional fields; read from the
	// file so only what it sets is applied.
	return decode(file, Default())
}

// decode copies the fields present in v onto s.
func decode(v cue.Value, s Settings) (Settings, error) {
	ints := []struct {
		path string
		set  func(int64)
	}{
		{"players", func(n int64) { s.Game.PlayerCount = int(n) }},
		{"dimension", func(n int64) { s.Game.Dimension = int(n) }},
		{"boardSize", func(n int64) { s.Game.BoardSize = int(n) }},
		{"winLength", func(n int64) { s.Game.WinLength = int(n) }},
		{"deadCells", func(n int64) { s.Game.DeadCells = int(n) }},
		{"aiDelayMs", func(n int64) { s.Game.AIDelay = time.Duration(n) * time.Millisecond }},
		{"resetDelayMs", func(n int64) { s.ResetDelay = time.Duration(n) * time.Millisecond }},
		{"score.goal", func(n int64) { s.Game.Score.Goal = int(n) }},
		{"countdown.seconds", func(n int64) { s.Game.Countdown.Seconds = int(n) }},
		{"blind.intervalMs", func(n int64) { s.Game.Blind.Interval = time.Duration(n) * time.Millisecond }},
		{"blind.revealMs", func(n int64) { s.Game.Blind.Reveal = time.Duration(n) * time.Millisecond }},
	}
	for _, f := range ints {
		fv, ok := lookup(v, f.path)
		if !ok {
			continue
		}
		n, err := fv.Int64()
		if err != nil {
			return Settings{}, formatCUEError(err)
		}
		f.set(n)
	}

	strs := []struct {
		path string
		set  func(string)
	}{
		{"database", func(x string) { s.Database = x }},
		{"score.mode", func(x string) { s.Game.Score.Mode = game.ScoreMode(x) }},
		{"blind.mode", func(x string) { s.Game.Blind.Mode = game.BlindMode(x) }},
		{"relay.url", func(x string) { s.RelayURL = x }},
		{"relay.room", func(x string) { s.Room = x }},
	}
	for _, f := range strs {
		fv, ok := lookup(v, f.path)
		if !ok {
			continue
		}
		x, err := fv.String()
		if err != nil {
			return Settings{}, formatCUEError(err)
		}
		f.set(x)
	}

	if fv, ok := lookup(v, "countdown.enabled"); ok {
		b, err := fv.Bool()
		if err != nil {
			return Settings{}, formatCUEError(err)
		}
		s.Game.Countdown.Enabled = b
	}

	if fv, ok := lookup(v, "aiPlayers"); ok {
		iter, err := fv.List()
		if err != nil {
			return Settings{}, formatCUEError(err)
		}
		s.AIPlayers = []int{}
		for iter.Next() {
			n, err := iter.Value().Int64()
			if err != nil {
				return Settings{}, formatCUEError(err)
			}
			s.AIPlayers = append(s.AIPlayers, int(n))
		}
	}

	return s, nil
}

// lookup returns the value at path if it is set.
func lookup(v cue.Value, path string) (cue.Value, bool) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return cue.Value{}, false
	}
	return fv, true
}
