package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hypertoe/internal/board"
	"github.com/roach88/hypertoe/internal/game"
	"github.com/roach88/hypertoe/internal/testutil"
)

func TestParseCell(t *testing.T) {
	flat := board.MustNew(2, 3)
	cube := board.MustNew(3, 3)

	tests := []struct {
		name    string
		b       board.Board
		in      string
		want    int
		wantErr string
	}{
		{"index", flat, "4", 4, ""},
		{"coordinates", flat, "2,1", 5, ""},
		{"spaced coordinates", flat, "0, 2", 6, ""},
		{"cube coordinates", cube, "1,1,1", 13, ""},
		{"index off board", flat, "9", 0, "off the 3x3 board"},
		{"coordinate off board", flat, "3,0", 0, "off the 3x3 board"},
		{"wrong arity", cube, "1,1", 0, "off the 3x3x3 board"},
		{"not a number", flat, "x", 0, "not a cell"},
		{"bad coordinate", flat, "1,y", 0, "not a coordinate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCell(tt.b, tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, tt.b.Index(tt.b.Coords(got)))
		})
	}
}

func TestFormatCoords(t *testing.T) {
	assert.Equal(t, "2,1", formatCoords(board.MustNew(2, 3), 5))
	assert.Equal(t, "1,1,1", formatCoords(board.MustNew(3, 3), 13))
}

func TestPlayerMark(t *testing.T) {
	assert.Equal(t, byte('X'), playerMark(0))
	assert.Equal(t, byte('O'), playerMark(1))
	assert.Equal(t, byte('H'), playerMark(9))
	assert.Equal(t, byte('?'), playerMark(-1))
	assert.Equal(t, byte('?'), playerMark(10))
}

func TestRenderBoard(t *testing.T) {
	g := game.New(
		game.WithScheduler(testutil.NewManualScheduler()),
		game.WithSeeds(game.FixedSeeds(1)),
		game.WithResetDelay(time.Second),
		game.WithLogger(quietLogger()),
	)
	for _, cell := range []int{0, 1, 3, 2, 6} {
		require.True(t, g.SubmitMove(cell, g.Round().CurrentTurn).Accepted)
	}

	var buf bytes.Buffer
	renderBoard(&buf, g)
	assert.Equal(t,
		"     0  1  2\n"+
			"  0[X] O  O \n"+
			"  1[X] .  . \n"+
			"  2[X] .  . \n",
		buf.String())

	buf.Reset()
	renderStatus(&buf, g)
	assert.Equal(t, "round 1  turn 5  X=1 O=0\n", buf.String())
}

func TestRenderBoard_Cube(t *testing.T) {
	g, _ := newSessionEngine(t, anySeat)
	require.True(t, g.SetDimension(3))

	var buf bytes.Buffer
	renderBoard(&buf, g)
	out := buf.String()
	assert.Contains(t, out, "layer 0\n")
	assert.Contains(t, out, "layer 2\n")
	assert.NotContains(t, out, "layer 3")
}
