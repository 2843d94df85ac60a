package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"
)

// Scheduler arms delayed callbacks for AI turns, countdowns, round resets
// and blind reveals. fn must be run on the goroutine that owns the engine.
// stop cancels a pending callback; calling it after fn ran is harmless.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func())
}

// NoTimers never fires. Engines built without a scheduler use it, so timed
// transitions only happen through explicit calls (ForcePass, ResetGame).
type NoTimers struct{}

// AfterFunc discards fn.
func (NoTimers) AfterFunc(time.Duration, func()) func() { return func() {} }

// SeedSource hands out one seed per match.
type SeedSource interface {
	NextSeed() uint64
}

// SeedFunc adapts a function to SeedSource.
type SeedFunc func() uint64

// NextSeed calls f.
func (f SeedFunc) NextSeed() uint64 { return f() }

// CryptoSeeds draws match seeds from crypto/rand.
var CryptoSeeds SeedSource = SeedFunc(func() uint64 {
	var b [8]byte
	// crypto/rand.Read does not fail on supported platforms.
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
})

// FixedSeeds returns the given seeds in order, repeating the last one.
func FixedSeeds(seeds ...uint64) SeedSource {
	if len(seeds) == 0 {
		seeds = []uint64{0}
	}
	i := 0
	return SeedFunc(func() uint64 {
		s := seeds[min(i, len(seeds)-1)]
		i++
		return s
	})
}
