package netsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/game"
)

func TestSceneRoundTrip(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.PlayerCount = 4
	cfg.Dimension = 3
	cfg.BoardSize = 5
	cfg.WinLength = 4
	cfg.AIDelay = 750 * time.Millisecond
	cfg.Blind = game.BlindConfig{Mode: game.BlindAIPlayers, Interval: 3 * time.Second, Reveal: 250 * time.Millisecond}
	cfg.Countdown = game.CountdownConfig{Enabled: true, Seconds: 15}
	cfg.Score = game.ScoreConfig{Mode: game.ScoreHighest, Goal: 3}

	assert.Equal(t, cfg, SceneFromConfig(cfg).Config())
}

func TestEncodeIsCanonical(t *testing.T) {
	frame, err := Encode(EventPlayerMove, "peer-a", "lobby", MovePayload{Cell: 4, Player: 1})
	require.NoError(t, err)
	assert.Equal(t,
		`{"eventName":"tictactoe-playerMove","origin":"peer-a","payload":{"cell":4,"player":1},"room":"lobby"}`,
		string(frame))
}

func TestDecode(t *testing.T) {
	move, err := Encode(EventPlayerMove, "peer-a", "lobby", MovePayload{Cell: 4, Player: 1})
	require.NoError(t, err)

	msg, err := Decode(move, "peer-b", "lobby")
	require.NoError(t, err)
	assert.Equal(t, EventPlayerMove, msg.EventName)
	assert.Equal(t, "peer-a", msg.Origin)
	require.NotNil(t, msg.Move)
	assert.Equal(t, MovePayload{Cell: 4, Player: 1}, *msg.Move)
	assert.Nil(t, msg.Scene)
	assert.Nil(t, msg.AI)

	ai, err := Encode(EventSyncAI, "peer-a", "lobby", AIPayload{Cells: 3, Preferences: []int{2, 0, 1}})
	require.NoError(t, err)
	msg, err = Decode(ai, "peer-b", "lobby")
	require.NoError(t, err)
	require.NotNil(t, msg.AI)
	assert.Equal(t, []int{2, 0, 1}, msg.AI.Preferences)
}

func TestDecode_Drops(t *testing.T) {
	valid, err := Encode(EventPlayerMove, "peer-a", "lobby", MovePayload{Cell: 0})
	require.NoError(t, err)
	unknown, err := Encode("tictactoe-chat", "peer-a", "lobby", MovePayload{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		frame string
		self  string
		room  string
		want  DropCode
	}{
		{"not json", "{", "peer-b", "lobby", DropMalformed},
		{"foreign room", string(valid), "peer-b", "den", DropForeignRoom},
		{"own origin", string(valid), "peer-a", "lobby", DropOwnOrigin},
		{"unknown event", string(unknown), "peer-b", "lobby", DropUnknownEvent},
		{"missing payload", `{"eventName":"tictactoe-playerMove","origin":"x","room":"lobby"}`, "peer-b", "lobby", DropInvalidPayload},
		{"wrong payload type", `{"eventName":"tictactoe-playerMove","origin":"x","room":"lobby","payload":{"cell":"four"}}`, "peer-b", "lobby", DropInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.frame), tt.self, tt.room)
			require.Error(t, err)
			assert.Equal(t, tt.want, DropCodeOf(err))
		})
	}

	assert.Equal(t, DropCode(""), DropCodeOf(assert.AnError))
}
