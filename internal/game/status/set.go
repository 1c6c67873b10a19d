package status

import "math"

// Modifier is one status applied to a combatant.
type Modifier struct {
	ID        string  `json:"id"`
	Kind      Kind    `json:"kind"`
	Magnitude float64 `json:"magnitude"`
	Remaining int     `json:"remaining"` // -1 = permanent
}

// Set is the ordered sequence of modifiers on one combatant, in application
// order. It is not safe for concurrent use; the owning duel serialises access.
type Set struct {
	mods []Modifier
}

// NewSet builds a Set holding mods in order.
func NewSet(mods ...Modifier) Set {
	return Set{mods: append([]Modifier(nil), mods...)}
}

// Apply adds def to the set. Re-applying a present status refreshes it in
// place: magnitude is replaced and Remaining becomes the longer of the two.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.ID) is true.
func (s *Set) Apply(def *Def) {
	for i := range s.mods {
		m := &s.mods[i]
		if m.ID != def.ID {
			continue
		}
		m.Kind = def.Kind
		m.Magnitude = def.Magnitude
		if def.Duration == Permanent || (m.Remaining != Permanent && def.Duration > m.Remaining) {
			m.Remaining = def.Duration
		}
		return
	}
	s.mods = append(s.mods, Modifier{ID: def.ID, Kind: def.Kind, Magnitude: def.Magnitude, Remaining: def.Duration})
}

// Tick decrements every timed modifier by one and removes those reaching 0.
// Permanent modifiers are untouched.
//
// Postcondition: for every id in the returned slice, Has(id) is false. The
// relative order of surviving modifiers is preserved.
func (s *Set) Tick() []string {
	var expired []string
	kept := s.mods[:0]
	for _, m := range s.mods {
		if m.Remaining != Permanent {
			m.Remaining--
			if m.Remaining <= 0 {
				expired = append(expired, m.ID)
				continue
			}
		}
		kept = append(kept, m)
	}
	s.mods = kept
	return expired
}

// Remove deletes the modifier with id. Missing ids are a no-op.
func (s *Set) Remove(id string) {
	for i, m := range s.mods {
		if m.ID == id {
			s.mods = append(s.mods[:i], s.mods[i+1:]...)
			return
		}
	}
}

// Has reports whether the modifier with id is active.
func (s Set) Has(id string) bool {
	for _, m := range s.mods {
		if m.ID == id {
			return true
		}
	}
	return false
}

// All returns a copy of the modifiers in application order.
func (s Set) All() []Modifier {
	if len(s.mods) == 0 {
		return nil
	}
	return append([]Modifier(nil), s.mods...)
}

// Len returns the number of active modifiers.
func (s Set) Len() int {
	return len(s.mods)
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	return NewSet(s.mods...)
}

// AccuracyBonus returns the summed accuracy modifiers.
func AccuracyBonus(s Set) float64 {
	return sum(s, KindAccuracy)
}

// DamageBonus returns the summed damage modifiers, rounded down.
func DamageBonus(s Set) int {
	return int(math.Floor(sum(s, KindDamage)))
}

// ArmorSoak returns the summed armor modifiers, rounded down and never negative.
//
// Postcondition: Returns >= 0.
func ArmorSoak(s Set) int {
	v := int(math.Floor(sum(s, KindArmor)))
	if v < 0 {
		return 0
	}
	return v
}

// CoverFactor returns the multiplier applied to accuracy of attacks against
// the owner. Multiple covers compound.
//
// Postcondition: Returns a value in [0, 1].
func CoverFactor(s Set) float64 {
	f := 1.0
	for _, m := range s.mods {
		if m.Kind == KindCover {
			f *= 1 - math.Max(0, math.Min(1, m.Magnitude))
		}
	}
	return f
}

func sum(s Set, k Kind) float64 {
	total := 0.0
	for _, m := range s.mods {
		if m.Kind == k {
			total += m.Magnitude
		}
	}
	return total
}
