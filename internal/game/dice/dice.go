// Package dice provides the randomness abstraction used by the duel engine.
//
// Every random decision in a duel is a uniform draw in [0, 1) taken from a
// Source owned by exactly one duel session. Replaying the same draw sequence
// reproduces the same duel.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// Source is the randomness provider for duel resolution.
//
// Implementations are not required to be safe for concurrent use; a Source
// belongs to a single duel session for its lifetime.
type Source interface {
	// Float64 returns a uniform draw in [0, 1).
	//
	// Postcondition: 0 <= v < 1.
	Float64() float64
}

// Pick maps a uniform draw onto the integer range [lo, hi].
//
// Precondition: 0 <= draw < 1; lo <= hi.
// Postcondition: lo <= result <= hi.
func Pick(draw float64, lo, hi int) int {
	span := hi - lo + 1
	v := lo + int(draw*float64(span))
	if v > hi {
		// draw values a hair below 1 can round up on very wide spans.
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// NewSeed generates a random seed using crypto/rand.
//
// Postcondition: Returns a seed or a non-nil error if the system entropy source fails.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
