// Package combat holds per-duel combatant state and the range and accuracy
// resolver that turns a weapon, a band and two random draws into a hit and
// damage figure.
package combat

import (
	"github.com/Havocprime/Lowlife-New/internal/game/status"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
)

// Combatant is one side of a duel. It is owned exclusively by one duel
// session; the weapon profiles it points at are shared and read-only.
type Combatant struct {
	// ID is the caller's opaque identity for this combatant.
	ID        string
	Name      string
	MaxHealth int
	Health    int
	Weapon    *weapon.Profile
	// Throwable is an optional thrown weapon with Charges uses left.
	Throwable *weapon.Profile
	Charges   int
	Modifiers status.Set
	// Pending is thrown damage queued on this combatant; it detonates at
	// the start of the combatant's next action.
	Pending     int
	PendingFrom string
}

// ApplyDamage reduces Health by amount, flooring at zero.
// Precondition: amount must be >= 0.
// Postcondition: Health >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.Health -= amount
	if c.Health < 0 {
		c.Health = 0
	}
}

// IsDown reports whether the combatant has no health left.
func (c *Combatant) IsDown() bool { return c.Health <= 0 }

// CanThrow reports whether the combatant holds a throwable with a charge left.
func (c *Combatant) CanThrow() bool { return c.Throwable != nil && c.Charges > 0 }

// Detonate applies and clears any pending thrown damage.
//
// Postcondition: Pending == 0; returns the damage applied.
func (c *Combatant) Detonate() int {
	dmg := c.Pending
	if dmg > 0 {
		c.ApplyDamage(dmg)
	}
	c.Pending = 0
	c.PendingFrom = ""
	return dmg
}

// Clone returns a copy of c that shares no mutable state with it.
func (c *Combatant) Clone() *Combatant {
	cp := *c
	cp.Modifiers = c.Modifiers.Clone()
	return &cp
}
