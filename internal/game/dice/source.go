package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// float53 converts the top 53 bits of u into a float64 in [0, 1).
func float53(u uint64) float64 {
	return float64(u>>11) / (1 << 53)
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, 1).
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
// Draws from it cannot be replayed; use NewSeededSource for recorded duels.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a cryptographically secure draw in [0, 1).
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float53(binary.LittleEndian.Uint64(b[:]))
}

// seededSource is a deterministic PCG stream derived from a single seed.
type seededSource struct {
	seed int64
	rng  *rand.Rand
}

// NewSeededSource returns a deterministic Source for seed.
//
// Postcondition: Two sources built from the same seed yield identical sequences.
func NewSeededSource(seed int64) Source {
	u := uint64(seed)
	return &seededSource{
		seed: seed,
		rng:  rand.New(rand.NewPCG(u, u^0x9e3779b97f4a7c15)),
	}
}

// Float64 returns the next draw of the seeded stream.
func (s *seededSource) Float64() float64 {
	return s.rng.Float64()
}

// Scripted replays a fixed sequence of draws. It is meant for golden tests
// and for reproducing a duel from recorded draws.
type Scripted struct {
	draws []float64
	pos   int
}

// NewScripted returns a Scripted source yielding draws in order.
//
// Precondition: every draw is in [0, 1).
func NewScripted(draws ...float64) *Scripted {
	cp := make([]float64, len(draws))
	copy(cp, draws)
	return &Scripted{draws: cp}
}

// Float64 returns the next scripted draw.
//
// Panics when the script is exhausted; a test that runs past its script is
// asserting on draws it never chose.
func (s *Scripted) Float64() float64 {
	if s.pos >= len(s.draws) {
		panic(fmt.Sprintf("dice: scripted source exhausted after %d draws", len(s.draws)))
	}
	v := s.draws[s.pos]
	s.pos++
	return v
}

// Remaining returns the number of draws not yet consumed.
func (s *Scripted) Remaining() int {
	return len(s.draws) - s.pos
}
