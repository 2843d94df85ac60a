package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/wire"
)

// marshalConfig returns the canonical JSON of cfg and its fingerprint.
func marshalConfig(cfg game.Config) (string, string, error) {
	data, err := wire.Marshal(cfg)
	if err != nil {
		return "", "", fmt.Errorf("marshal config: %w", err)
	}
	hash, err := wire.Fingerprint(wire.DomainConfig, cfg)
	if err != nil {
		return "", "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), hash, nil
}

func unmarshalConfig(s string) (game.Config, error) {
	var cfg game.Config
	if err := json.Unmarshal([]byte(s), &cfg); err != nil {
		return game.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// marshalJSON stores small values (score lists, lines, payloads) as
// canonical JSON text.
func marshalJSON(v any) (string, error) {
	data, err := wire.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalInts(s string) ([]int, error) {
	out := []int{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("unmarshal ints: %w", err)
	}
	return out, nil
}

func unmarshalLines(s string) ([][]int, error) {
	out := [][]int{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("unmarshal lines: %w", err)
	}
	return out, nil
}
