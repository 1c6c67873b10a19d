package combat

import (
	"fmt"

	"github.com/Havocprime/Lowlife-New/internal/game/status"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
)

// Loadout is the serialisable description of a combatant: weapons are
// referenced by catalog ID so a stored duel can be rebuilt against the
// catalog.
type Loadout struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Health      int               `json:"health" yaml:"health"`
	MaxHealth   int               `json:"max_health,omitempty" yaml:"max_health"`
	Weapon      string            `json:"weapon" yaml:"weapon"`
	Throwable   string            `json:"throwable,omitempty" yaml:"throwable"`
	Charges     int               `json:"charges,omitempty" yaml:"charges"`
	Modifiers   []status.Modifier `json:"modifiers,omitempty" yaml:"-"`
	Pending     int               `json:"pending,omitempty" yaml:"-"`
	PendingFrom string            `json:"pending_from,omitempty" yaml:"-"`
}

// Build resolves the loadout's weapon IDs against cat.
//
// Precondition: cat is non-nil.
// Postcondition: returns a fresh Combatant, or an error wrapping
// weapon.ErrNotFound or ErrInvalidArgument.
func (l Loadout) Build(cat *weapon.Catalog) (*Combatant, error) {
	if l.ID == "" {
		return nil, fmt.Errorf("%w: combatant id must not be empty", ErrInvalidArgument)
	}
	if l.Health < 0 || l.Charges < 0 || l.Pending < 0 {
		return nil, fmt.Errorf("%w: combatant %q: health, charges and pending must be >= 0", ErrInvalidArgument, l.ID)
	}
	w, err := cat.Get(l.Weapon)
	if err != nil {
		return nil, fmt.Errorf("combatant %q weapon: %w", l.ID, err)
	}
	c := &Combatant{
		ID:          l.ID,
		Name:        l.Name,
		Health:      l.Health,
		MaxHealth:   l.MaxHealth,
		Weapon:      w,
		Charges:     l.Charges,
		Modifiers:   status.NewSet(l.Modifiers...),
		Pending:     l.Pending,
		PendingFrom: l.PendingFrom,
	}
	if c.MaxHealth < c.Health {
		c.MaxHealth = c.Health
	}
	if l.Throwable != "" {
		t, err := cat.Get(l.Throwable)
		if err != nil {
			return nil, fmt.Errorf("combatant %q throwable: %w", l.ID, err)
		}
		c.Throwable = t
	}
	return c, nil
}

// LoadoutOf captures c as a Loadout.
func LoadoutOf(c *Combatant) Loadout {
	l := Loadout{
		ID:          c.ID,
		Name:        c.Name,
		Health:      c.Health,
		MaxHealth:   c.MaxHealth,
		Charges:     c.Charges,
		Modifiers:   c.Modifiers.All(),
		Pending:     c.Pending,
		PendingFrom: c.PendingFrom,
	}
	if c.Weapon != nil {
		l.Weapon = c.Weapon.ID
	}
	if c.Throwable != nil {
		l.Throwable = c.Throwable.ID
	}
	return l
}
