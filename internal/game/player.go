package game

import (
	"fmt"
	"math/rand/v2"
)

// Color is a 24-bit RGB value.
type Color uint32

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

func randomColor(rng *rand.Rand) Color {
	return Color(rng.Uint32N(0x1000000))
}

// Player is one seat at the table. IDs are 0-based and dense.
type Player struct {
	ID    int   `json:"id"`
	IsAI  bool  `json:"isAI"`
	Color Color `json:"color"`
	Score int   `json:"score"`
}
