package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted game.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Settings is an optional CUE settings file, relative to the scenario.
	Settings string `yaml:"settings,omitempty"`

	// Config is applied on top of Settings before the engine starts.
	Config *ConfigPatch `yaml:"config,omitempty"`

	// Seeds are handed out to matches in order; the last one repeats.
	// Defaults to [1].
	Seeds []uint64 `yaml:"seeds,omitempty"`

	// AIPlayers are the seats played by the computer.
	AIPlayers []int `yaml:"ai_players,omitempty"`

	// ResetDelay is the pause between rounds, e.g. "800ms". Defaults to the
	// settings value. Use "0s" for immediate resets.
	ResetDelay string `yaml:"reset_delay,omitempty"`

	Flow       []Step      `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step kinds.
const (
	StepMove    = "move"    // SubmitMove(cell, player)
	StepPass    = "pass"    // ForcePass
	StepReset   = "reset"   // ResetGame
	StepFire    = "fire"    // fire the next pending timer
	StepAdvance = "advance" // advance the clock by duration
	StepSet     = "set"     // apply config through the setters
	StepAI      = "ai"      // SetPlayerAI(player, enabled)
)

// Step is one action in the flow.
type Step struct {
	Do       string       `yaml:"do"`
	Cell     int          `yaml:"cell,omitempty"`
	Player   int          `yaml:"player,omitempty"`
	Duration string       `yaml:"duration,omitempty"`
	Enabled  bool         `yaml:"enabled,omitempty"`
	Config   *ConfigPatch `yaml:"config,omitempty"`
	Expect   *Expect      `yaml:"expect,omitempty"`
}

// Expect checks the result of a step. Only the fields given are checked.
type Expect struct {
	// Accepted and Reason apply to moves.
	Accepted *bool  `yaml:"accepted,omitempty"`
	Reason   string `yaml:"reason,omitempty"`
	// Outcome and Winner apply to moves and passes.
	Outcome string `yaml:"outcome,omitempty"`
	Winner  *int   `yaml:"winner,omitempty"`
	// Fired applies to advance: how many timers fired.
	Fired *int `yaml:"fired,omitempty"`
	// Changed applies to set and ai.
	Changed *bool `yaml:"changed,omitempty"`
}

// ConfigPatch names the settings to change. Durations use Go syntax.
type ConfigPatch struct {
	Players       *int    `yaml:"players,omitempty"`
	Dimension     *int    `yaml:"dimension,omitempty"`
	BoardSize     *int    `yaml:"board_size,omitempty"`
	WinLength     *int    `yaml:"win_length,omitempty"`
	DeadCells     *int    `yaml:"dead_cells,omitempty"`
	ScoreMode     *string `yaml:"score_mode,omitempty"`
	GoalScore     *int    `yaml:"goal_score,omitempty"`
	AIDelay       *string `yaml:"ai_delay,omitempty"`
	Countdown     *int    `yaml:"countdown,omitempty"` // seconds; 0 disables
	BlindMode     *string `yaml:"blind_mode,omitempty"`
	BlindInterval *string `yaml:"blind_interval,omitempty"`
	BlindReveal   *string `yaml:"blind_reveal,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// cell
	Cell   int    `yaml:"cell,omitempty"`
	State  string `yaml:"state,omitempty"`
	Player *int   `yaml:"player,omitempty"`

	// phase
	Phase string `yaml:"phase,omitempty"`

	// scores
	Scores []int `yaml:"scores,omitempty"`

	// round
	Round *int `yaml:"round,omitempty"`
	Turn  *int `yaml:"turn,omitempty"`

	// event_count, event_order
	Event  string   `yaml:"event,omitempty"`
	Count  int      `yaml:"count,omitempty"`
	Events []string `yaml:"events,omitempty"`

	// claimed_lines
	Lines [][]int `yaml:"lines,omitempty"`

	// board: one character per cell, see FinalState.Board
	Board string `yaml:"board,omitempty"`
}

// Assertion type constants.
const (
	AssertCell         = "cell"
	AssertPhase        = "phase"
	AssertScores       = "scores"
	AssertRound        = "round"
	AssertEventCount   = "event_count"
	AssertEventOrder   = "event_order"
	AssertClaimedLines = "claimed_lines"
	AssertBoard        = "board"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads a scenario, resolving the settings path
// relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Settings != "" && !filepath.IsAbs(scenario.Settings) && basePath != "" {
		scenario.Settings = filepath.Join(basePath, scenario.Settings)
	}
	if scenario.Settings != "" {
		if _, err := os.Stat(scenario.Settings); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: settings file not found: %s", scenario.Settings)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.ResetDelay != "" {
		if _, err := time.ParseDuration(s.ResetDelay); err != nil {
			return fmt.Errorf("reset_delay: %w", err)
		}
	}
	if err := s.Config.validate("config"); err != nil {
		return err
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Do {
	case StepMove, StepPass, StepReset, StepFire, StepAI:
	case StepAdvance:
		if _, err := time.ParseDuration(st.Duration); err != nil {
			return fmt.Errorf("flow[%d]: duration is required for advance: %w", index, err)
		}
	case StepSet:
		if st.Config == nil {
			return fmt.Errorf("flow[%d]: config is required for set", index)
		}
		if err := st.Config.validate(fmt.Sprintf("flow[%d].config", index)); err != nil {
			return err
		}
	case "":
		return fmt.Errorf("flow[%d]: do is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown step %q", index, st.Do)
	}
	return nil
}

func (p *ConfigPatch) validate(field string) error {
	if p == nil {
		return nil
	}
	for name, d := range map[string]*string{
		"ai_delay":       p.AIDelay,
		"blind_interval": p.BlindInterval,
		"blind_reveal":   p.BlindReveal,
	} {
		if d == nil {
			continue
		}
		if _, err := time.ParseDuration(*d); err != nil {
			return fmt.Errorf("%s.%s: %w", field, name, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCell:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for cell", index)
		}
	case AssertPhase:
		if a.Phase == "" {
			return fmt.Errorf("assertions[%d]: phase is required for phase", index)
		}
	case AssertScores:
		if a.Scores == nil {
			return fmt.Errorf("assertions[%d]: scores is required for scores", index)
		}
	case AssertRound:
		if a.Round == nil && a.Turn == nil {
			return fmt.Errorf("assertions[%d]: round or turn is required for round", index)
		}
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertClaimedLines:
		if a.Lines == nil {
			return fmt.Errorf("assertions[%d]: lines is required for claimed_lines", index)
		}
	case AssertBoard:
		if a.Board == "" {
			return fmt.Errorf("assertions[%d]: board is required for board", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
