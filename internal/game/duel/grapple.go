package duel

import (
	"github.com/Havocprime/Lowlife-New/internal/game/combat"
	"github.com/Havocprime/Lowlife-New/internal/game/dice"
)

const (
	startPositioning = 50
	startMeter       = 50
)

// Grapple is the clinch two combatants enter at the closest band. While it
// holds, weapons, movement, throws and statuses are unavailable; only the
// grapple actions and pass remain.
type Grapple struct {
	// Positioning is each combatant's leverage in [0, 100]; both start at 50.
	Positioning [2]int `json:"positioning"`
	// Choke is set while one combatant holds a choke on the other.
	Choke *Choke `json:"choke,omitempty"`
}

// Choke tracks the held combatant's breath and bloodflow, each in [0, 100].
// Either reaching 0 knocks the held combatant out.
type Choke struct {
	// By is the index of the choking combatant.
	By        int `json:"by"`
	Breath    int `json:"breath"`
	Bloodflow int `json:"bloodflow"`
}

// Held returns the index of the combatant being choked.
func (c *Choke) Held() int { return 1 - c.By }

// Out reports whether the held combatant has passed out.
func (c *Choke) Out() bool { return c.Breath <= 0 || c.Bloodflow <= 0 }

func newGrapple() *Grapple {
	return &Grapple{Positioning: [2]int{startPositioning, startPositioning}}
}

func (g *Grapple) clone() *Grapple {
	if g == nil {
		return nil
	}
	cp := *g
	if g.Choke != nil {
		ch := *g.Choke
		cp.Choke = &ch
	}
	return &cp
}

// choking reports whether i currently holds a choke.
func (g *Grapple) choking(i int) bool {
	return g != nil && g.Choke != nil && g.Choke.By == i
}

// held reports whether i is currently being choked.
func (g *Grapple) held(i int) bool {
	return g != nil && g.Choke != nil && g.Choke.Held() == i
}

// choked reports whether i has passed out from a choke.
func (g *Grapple) choked(i int) bool {
	return g.held(i) && g.Choke.Out()
}

// shift moves delta leverage from the other combatant to actor.
func (g *Grapple) shift(actor, delta int) {
	g.Positioning[actor] = clampMeter(g.Positioning[actor] + delta)
	g.Positioning[1-actor] = clampMeter(g.Positioning[1-actor] - delta)
}

// odds turns actor's leverage lead into a success chance: base plus half a
// percent per point of lead, bounded to [lo, hi].
func (g *Grapple) odds(actor int, base, lo, hi float64) float64 {
	lead := float64(g.Positioning[actor] - g.Positioning[1-actor])
	return combat.Clamp(base+lead/200, lo, hi)
}

// squeeze tightens a held choke using both draws.
func (c *Choke) squeeze(d combat.Draws) {
	c.Breath = clampMeter(c.Breath - dice.Pick(d.Hit, 8, 12))
	c.Bloodflow = clampMeter(c.Bloodflow - dice.Pick(d.Damage, 4, 8))
}

func clampMeter(v int) int {
	return max(0, min(100, v))
}
