// Package netsync keeps peers' games in step over an unordered broadcast
// channel.
//
// Three messages exist. A scene message carries the full configuration;
// receivers apply it field by field through the normal setters, so
// re-applying a value is a no-op. An AI message carries the preference
// order, the only AI state peers must share. A move message carries a
// human claim. AI moves are never sent: every peer computes them.
package netsync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/wire"
)

// Event names on the wire.
const (
	EventSyncScene  = "tictactoe-syncSceneData"
	EventSyncAI     = "tictactoe-syncAi"
	EventPlayerMove = "tictactoe-playerMove"
)

// Envelope is the frame every message travels in.
type Envelope struct {
	EventName string          `json:"eventName"`
	Origin    string          `json:"origin"`
	Room      string          `json:"room"`
	Payload   json.RawMessage `json:"payload"`
}

// ScenePayload is the shared configuration. Durations travel as
// milliseconds.
type ScenePayload struct {
	PlayerCount int          `json:"playerCount"`
	Dimension   int          `json:"dimension"`
	BoardSize   int          `json:"boardSize"`
	WinLength   int          `json:"winLength"`
	DeadCells   int          `json:"deadCells"`
	AIDelayMS   int64        `json:"aiDelayMs"`
	Blind       BlindPayload `json:"blind"`
	Countdown   CountPayload `json:"countdown"`
	Score       ScorePayload `json:"score"`
}

type BlindPayload struct {
	Mode       string `json:"mode"`
	IntervalMS int64  `json:"intervalMs"`
	RevealMS   int64  `json:"revealMs"`
}

type CountPayload struct {
	Enabled bool `json:"enabled"`
	Seconds int  `json:"seconds"`
}

type ScorePayload struct {
	Mode string `json:"mode"`
	Goal int    `json:"goal"`
}

// SceneFromConfig converts a game configuration for the wire.
func SceneFromConfig(c game.Config) ScenePayload {
	return ScenePayload{
		PlayerCount: c.PlayerCount,
		Dimension:   c.Dimension,
		BoardSize:   c.BoardSize,
		WinLength:   c.WinLength,
		DeadCells:   c.DeadCells,
		AIDelayMS:   c.AIDelay.Milliseconds(),
		Blind: BlindPayload{
			Mode:       string(c.Blind.Mode),
			IntervalMS: c.Blind.Interval.Milliseconds(),
			RevealMS:   c.Blind.Reveal.Milliseconds(),
		},
		Countdown: CountPayload{Enabled: c.Countdown.Enabled, Seconds: c.Countdown.Seconds},
		Score:     ScorePayload{Mode: string(c.Score.Mode), Goal: c.Score.Goal},
	}
}

// Config converts the payload back. The result is not clamped; the
// engine's setters do that.
func (p ScenePayload) Config() game.Config {
	return game.Config{
		PlayerCount: p.PlayerCount,
		Dimension:   p.Dimension,
		BoardSize:   p.BoardSize,
		WinLength:   p.WinLength,
		DeadCells:   p.DeadCells,
		AIDelay:     time.Duration(p.AIDelayMS) * time.Millisecond,
		Blind: game.BlindConfig{
			Mode:     game.BlindMode(p.Blind.Mode),
			Interval: time.Duration(p.Blind.IntervalMS) * time.Millisecond,
			Reveal:   time.Duration(p.Blind.RevealMS) * time.Millisecond,
		},
		Countdown: game.CountdownConfig{Enabled: p.Countdown.Enabled, Seconds: p.Countdown.Seconds},
		Score:     game.ScoreConfig{Mode: game.ScoreMode(p.Score.Mode), Goal: p.Score.Goal},
	}
}

// AIPayload is a preference order for a board of Cells cells.
type AIPayload struct {
	Cells       int   `json:"cells"`
	Preferences []int `json:"preferences"`
}

// MovePayload is one human claim.
type MovePayload struct {
	Cell   int `json:"cell"`
	Player int `json:"player"`
}

// Message is a decoded, accepted envelope. Exactly one payload is set.
type Message struct {
	EventName string
	Origin    string
	Scene     *ScenePayload
	AI        *AIPayload
	Move      *MovePayload
}

// Encode frames payload as canonical JSON.
func Encode(eventName, origin, room string, payload any) ([]byte, error) {
	body, err := wire.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventName, err)
	}
	return wire.Marshal(Envelope{EventName: eventName, Origin: origin, Room: room, Payload: body})
}

// Decode parses a frame for the peer self in room. Frames that are
// malformed, unknown, from another room or from self come back as a
// *DropError.
func Decode(data []byte, self, room string) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, newDropError(DropMalformed, err.Error())
	}
	if env.Room != room {
		return Message{}, newDropError(DropForeignRoom, fmt.Sprintf("room %q", env.Room))
	}
	if env.Origin == self {
		return Message{}, newDropError(DropOwnOrigin, "echo of own message")
	}

	msg := Message{EventName: env.EventName, Origin: env.Origin}
	var target any
	switch env.EventName {
	case EventSyncScene:
		msg.Scene = &ScenePayload{}
		target = msg.Scene
	case EventSyncAI:
		msg.AI = &AIPayload{}
		target = msg.AI
	case EventPlayerMove:
		msg.Move = &MovePayload{}
		target = msg.Move
	default:
		return Message{}, newDropError(DropUnknownEvent, fmt.Sprintf("event %q", env.EventName))
	}
	if len(env.Payload) == 0 {
		return Message{}, newDropError(DropInvalidPayload, "missing payload")
	}
	if err := json.Unmarshal(env.Payload, target); err != nil {
		return Message{}, newDropError(DropInvalidPayload, err.Error())
	}
	return msg, nil
}
